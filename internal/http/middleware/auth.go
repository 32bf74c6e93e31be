package middleware

import (
	"encoding/json"
	"net/http"
)

// SessionChecker reports whether the operator session is authenticated.
type SessionChecker interface {
	IsAuthenticated() bool
}

// Decision is the route-guard outcome for a protected view.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Guard returns the explicit allow/redirect decision for the current session.
func Guard(sessions SessionChecker) Decision {
	if sessions.IsAuthenticated() {
		return Decision{Allow: true}
	}
	return Decision{RedirectTo: "/login"}
}

// RequireSession rejects protected routes with 401 and the redirect target
// when the session is unauthenticated.
func RequireSession(sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := Guard(sessions)
			if !decision.Allow {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":    "not authenticated",
					"redirect": decision.RedirectTo,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
