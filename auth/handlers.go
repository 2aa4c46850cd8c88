package auth

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/user/biblioteka-go/web"
)

// Handlers exposes the auth service over HTTP.
type Handlers struct {
	service      *AuthService
	validate     *validator.Validate
	cookieMaxAge time.Duration
}

// NewHandlers creates the auth handlers.
func NewHandlers(service *AuthService, validate *validator.Validate, cookieMaxAge time.Duration) *Handlers {
	return &Handlers{service: service, validate: validate, cookieMaxAge: cookieMaxAge}
}

// setSessionCookie attaches the token as an HTTP-only cookie, keeping
// it out of reach of client-side scripting.
func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the cookie on the client. The token itself
// stays valid until its natural expiry; there is no server-side
// revocation.
func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// HandleRegister godoc
// @Summary Register a new user
// @Description Creates an account, sets the session cookie and returns the created user.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body auth.RegisterRequest true "registration details"
// @Success 201 {object} web.Envelope
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := web.DecodeJSON(w, r, &req); err != nil {
			web.WriteError(w, r, err)
			return
		}
		defer r.Body.Close()

		if err := web.CheckValidation(h.validate, req); err != nil {
			web.WriteError(w, r, err)
			return
		}

		user, token, err := h.service.Register(r.Context(), req)
		if err != nil {
			web.WriteError(w, r, err)
			return
		}

		h.setSessionCookie(w, token)
		web.WriteJSON(w, http.StatusCreated, web.Success(user))
	}
}

// HandleLogin godoc
// @Summary Log in
// @Description Verifies credentials, sets the session cookie and returns the user.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body auth.LoginRequest true "login credentials"
// @Success 200 {object} web.Envelope
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := web.DecodeJSON(w, r, &req); err != nil {
			web.WriteError(w, r, err)
			return
		}
		defer r.Body.Close()

		if err := web.CheckValidation(h.validate, req); err != nil {
			web.WriteError(w, r, err)
			return
		}

		user, token, err := h.service.Login(r.Context(), req)
		if err != nil {
			web.WriteError(w, r, err)
			return
		}

		h.setSessionCookie(w, token)
		web.WriteJSON(w, http.StatusOK, web.Success(LoginData{User: user}))
	}
}

// HandleLogout godoc
// @Summary Log out
// @Description Clears the session cookie. The token is not revoked server-side.
// @Tags auth
// @Produce json
// @Success 200 {object} web.Envelope
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/v1/auth/logout [get]
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.clearSessionCookie(w)
		web.WriteJSON(w, http.StatusOK, web.SuccessMessage("user logged out successfully"))
	}
}
