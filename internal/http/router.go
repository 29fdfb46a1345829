package http

import (
	nethttp "net/http"

	"github.com/preston-bernstein/pickem-client/internal/http/handlers"
)

// NewRouter registers HTTP routes on a ServeMux.
func NewRouter(handler *handlers.Handler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("GET /ready", handler.Ready)
	mux.HandleFunc("GET /session", handler.Session)
	mux.HandleFunc("POST /session/login", handler.Login)
	mux.HandleFunc("POST /session/logout", handler.Logout)
	mux.HandleFunc("GET /weeks", handler.Weeks)
	mux.HandleFunc("GET /dashboard", handler.Dashboard)
	mux.HandleFunc("POST /dashboard/picks", handler.TogglePick)
	mux.HandleFunc("GET /opponents", handler.Opponents)
	mux.HandleFunc("GET /compare/{userId}", handler.Compare)
	mux.HandleFunc("GET /leaderboard", handler.Leaderboard)
	return mux
}
