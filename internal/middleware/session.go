package middleware

import (
	"net/http"

	"recipe-admin/internal/model"
)

const LoginPath = "/login"

type sessionChecker interface {
	CheckTokenValidity()
	IsAuthenticated() bool
}

type SessionGuard struct {
	session sessionChecker
}

func NewSessionGuard(session sessionChecker) *SessionGuard {
	return &SessionGuard{session: session}
}

// RequireSession re-checks the stored token before every guarded request.
// Pages are redirected to the login screen, API calls get a 401 envelope
// carrying the same redirect.
func (g *SessionGuard) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.session.CheckTokenValidity()
		if g.session.IsAuthenticated() {
			next.ServeHTTP(w, r)
			return
		}

		if isAPIPath(r.URL.Path) {
			writeUnauthenticated(w)
			return
		}

		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
	})
}

// RedirectAuthenticated sends an already signed-in operator away from the login page.
func (g *SessionGuard) RedirectAuthenticated(target string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.session.CheckTokenValidity()
			if r.Method == http.MethodGet && g.session.IsAuthenticated() {
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthenticated(w http.ResponseWriter) {
	writeFailure(w, http.StatusUnauthorized, model.APIError{
		Code:     "UNAUTHENTICATED",
		Message:  "session expired, please sign in again",
		Redirect: LoginPath,
	})
}
