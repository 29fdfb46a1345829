package users

import (
	"fmt"
	"strings"
)

// User is a player of the pick'em game.
type User struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// FirstName returns the first word of the name, or a placeholder built from the ID.
func (u User) FirstName() string {
	if fields := strings.Fields(u.Name); len(fields) > 0 {
		return fields[0]
	}
	return fmt.Sprintf("User %d", u.ID)
}
