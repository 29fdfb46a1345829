package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiredLocally reports whether token is a JWT whose exp claim is already past.
// The signature is not checked; the backend remains the authority. Tokens that
// are not JWTs are never treated as expired here.
func expiredLocally(token string, now time.Time) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
