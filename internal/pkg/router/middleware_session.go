package router

import (
	"net/http"

	"github.com/promonhq/promon/internal/pkg/session"
)

// middlewareSessionCookie copies the session cookie value into the request
// context. It never rejects a request: whether a session is required, and
// whether the token is still valid, is decided by the endpoint's usecase.
func middlewareSessionCookie(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(session.CookieName); err == nil && cookie.Value != "" {
			r = r.WithContext(session.SetToken(r.Context(), cookie.Value))
		}

		next.ServeHTTP(w, r)
	})
}
