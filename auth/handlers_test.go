package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandlers(t *testing.T) (*Handlers, pgxmock.PgxPoolIface) {
	t.Helper()
	service, mock := newTestService(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewHandlers(service, validate, time.Hour), mock
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func TestHandleRegister(t *testing.T) {
	t.Run("creates the user and sets the session cookie", func(t *testing.T) {
		handlers, mock := newTestHandlers(t)

		mock.ExpectQuery(`SELECT id, username, password, role FROM users`).
			WithArgs("alice").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("alice", pgxmock.AnyArg(), RoleUser).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(1))

		body := `{"username":"alice","password":"pw123","passwordconfirm":"pw123"}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))

		handlers.HandleRegister()(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"success"`)
		assert.Contains(t, rec.Body.String(), `"username":"alice"`)
		assert.NotContains(t, rec.Body.String(), "password", "the hash must never appear in a response")

		cookie := sessionCookie(t, rec)
		require.NotNil(t, cookie, "session cookie must be set")
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects a mismatched password confirmation", func(t *testing.T) {
		handlers, _ := newTestHandlers(t)

		body := `{"username":"alice","password":"pw123","passwordconfirm":"different"}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))

		handlers.HandleRegister()(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"fail"`)
		assert.Contains(t, rec.Body.String(), "does not match")
		assert.Nil(t, sessionCookie(t, rec))
	})

	t.Run("rejects an empty body", func(t *testing.T) {
		handlers, _ := newTestHandlers(t)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(""))

		handlers.HandleRegister()(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "request body must have data")
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		handlers, _ := newTestHandlers(t)

		body := `{"username":"alice","password":"pw123","passwordconfirm":"pw123","role":"superuser"}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))

		handlers.HandleRegister()(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "must be one of")
	})
}

func TestHandleLogin(t *testing.T) {
	t.Run("returns the user and sets the session cookie", func(t *testing.T) {
		handlers, mock := newTestHandlers(t)

		hashed, err := handlers.service.hasher.Hash("pw123")
		require.NoError(t, err)
		mock.ExpectQuery(`SELECT id, username, password, role FROM users`).
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password", "role"}).
				AddRow(1, "alice", hashed, RoleUser))

		body := `{"username":"alice","password":"pw123"}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))

		handlers.HandleLogin()(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"user"`)
		assert.Contains(t, rec.Body.String(), `"username":"alice"`)

		cookie := sessionCookie(t, rec)
		require.NotNil(t, cookie)
		assert.NotEmpty(t, cookie.Value)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports an unknown user as not found", func(t *testing.T) {
		handlers, mock := newTestHandlers(t)

		mock.ExpectQuery(`SELECT id, username, password, role FROM users`).
			WithArgs("nobody").
			WillReturnError(pgx.ErrNoRows)

		body := `{"username":"nobody","password":"pw123"}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))

		handlers.HandleLogin()(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "please sign up")
		assert.Nil(t, sessionCookie(t, rec))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHandleLogout(t *testing.T) {
	handlers, _ := newTestHandlers(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/logout", nil)

	handlers.HandleLogout()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out successfully")

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie, "an expired cookie must be sent")
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}
