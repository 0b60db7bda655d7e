// Package middleware provides the portal's HTTP middleware.
package middleware

import (
	"encoding/json"
	"net/http"
	"net/url"

	"hospital-portal/internal/ctxkeys"
	"hospital-portal/internal/guard"
	"hospital-portal/internal/session"
)

// StateSource exposes the current session. *session.Store implements it.
type StateSource interface {
	State() session.State
}

// RequireAccess evaluates the route requirement for every request:
//   - session still loading: 503 with Retry-After
//   - signed out: 302 to the login page, carrying the attempted location in "from"
//   - wrong role: 403 listing the roles the route accepts
//   - wrong department: 302 to the user's own dashboard
//   - otherwise the user is placed in the request context
func RequireAccess(src StateSource, req guard.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := src.State()
			d := guard.Evaluate(st, req, r.URL.RequestURI())

			switch d.Outcome {
			case guard.Loading:
				w.Header().Set("Retry-After", "1")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})

			case guard.RedirectLogin:
				http.Redirect(w, r, d.Target+"?from="+url.QueryEscape(d.From), http.StatusFound)

			case guard.Denied:
				writeJSON(w, http.StatusForbidden, map[string]any{
					"error":         "Access denied",
					"requiredRoles": d.RequiredRoles,
					"currentRole":   d.CurrentRole,
				})

			case guard.RedirectHome:
				http.Redirect(w, r, d.Target, http.StatusFound)

			default:
				next.ServeHTTP(w, r.WithContext(ctxkeys.WithUser(r.Context(), st.User)))
			}
		})
	}
}

// Authenticated admits any signed-in user.
func Authenticated(src StateSource) func(http.Handler) http.Handler {
	return RequireAccess(src, guard.Requirement{})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
