package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtect(t *testing.T) {
	t.Run("rejects a request without the session cookie", func(t *testing.T) {
		service, _ := newTestService(t)

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler must not run without a session")
		})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/logout", nil)

		Protect(service)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "you are not logged in")
		assert.Contains(t, rec.Body.String(), `"status":"fail"`)
	})

	t.Run("rejects a request with an invalid token", func(t *testing.T) {
		service, _ := newTestService(t)

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler must not run with an invalid token")
		})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not.a.token"})

		Protect(service)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid token")
	})

	t.Run("attaches the resolved user to the context", func(t *testing.T) {
		service, mock := newTestService(t)
		token, err := service.tokens.Issue(7)
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT id, username, role FROM users`).
			WithArgs(7).
			WillReturnRows(pgxmock.NewRows([]string{"id", "username", "role"}).
				AddRow(7, "alice", RoleUser))

		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			user, ok := UserFromContext(r.Context())
			require.True(t, ok, "user must be in the context")
			assert.Equal(t, 7, user.ID)
			assert.Equal(t, "alice", user.Username)
		})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

		Protect(service)(next).ServeHTTP(rec, req)

		assert.True(t, called, "next handler should have run")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		user       *User
		roles      []string
		wantStatus int
		wantNext   bool
	}{
		{
			name:       "admin passes an admin gate",
			user:       &User{ID: 1, Username: "boss", Role: RoleAdmin},
			roles:      []string{RoleAdmin},
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "regular user is forbidden",
			user:       &User{ID: 2, Username: "alice", Role: RoleUser},
			roles:      []string{RoleAdmin},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "any listed role passes",
			user:       &User{ID: 2, Username: "alice", Role: RoleUser},
			roles:      []string{RoleAdmin, RoleUser},
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "no user in context",
			user:       nil,
			roles:      []string{RoleAdmin},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/books/1", nil)
			if tt.user != nil {
				req = req.WithContext(NewContextWithUser(req.Context(), tt.user))
			}

			RequireRole(tt.roles...)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantNext, called)
		})
	}
}

func TestRoleAllowed(t *testing.T) {
	assert.True(t, roleAllowed(RoleAdmin, []string{RoleAdmin}))
	assert.True(t, roleAllowed(RoleUser, []string{RoleAdmin, RoleUser}))
	assert.False(t, roleAllowed(RoleUser, []string{RoleAdmin}))
	assert.False(t, roleAllowed(RoleUser, nil))
}
