package auth

import (
	"net/http"

	"github.com/incontext-app/incontext/internal/identity"
)

// LoginPath is where unauthenticated requests are redirected.
const LoginPath = "/auth/login"

// RequireAuth wraps a handler so it only runs for requests carrying a valid
// session cookie. The resolved identity is placed in the request context;
// everything else is redirected to the login page.
func RequireAuth(sys System, cookie string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookie)
			if err != nil || c.Value == "" {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			user, err := sys.SessionUser(r.Context(), c.Value)
			if err != nil {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			ctx := identity.WithContext(r.Context(), identity.Identity{
				UserID:   user.ID,
				Username: user.Username,
			})
			next(w, r.WithContext(ctx))
		}
	}
}
