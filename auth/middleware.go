package auth

import (
	"net/http"

	"github.com/user/biblioteka-go/apperror"
	"github.com/user/biblioteka-go/web"
)

// SessionCookieName is the HTTP-only cookie carrying the session token.
const SessionCookieName = "jwt"

// Protect gates a route group behind authentication. It reads the
// session cookie, resolves the current user through the auth service
// and attaches the user to the request context for downstream handlers.
func Protect(service *AuthService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				web.WriteError(w, r, apperror.NewAuthError("you are not logged in, please log in to access this route", nil))
				return
			}

			user, err := service.CurrentUser(r.Context(), cookie.Value)
			if err != nil {
				web.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithUser(r.Context(), user)))
		})
	}
}

// RequireRole gates a route group behind a role check. It must run
// after Protect, which puts the user in the context.
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				web.WriteError(w, r, apperror.NewAuthError("you are not logged in, please log in to access this route", nil))
				return
			}
			if !roleAllowed(user.Role, roles) {
				web.WriteError(w, r, apperror.NewForbiddenError("you do not have permission to perform this action", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// roleAllowed reports whether userRole is in the allowed set.
func roleAllowed(userRole string, allowed []string) bool {
	for _, role := range allowed {
		if userRole == role {
			return true
		}
	}
	return false
}
