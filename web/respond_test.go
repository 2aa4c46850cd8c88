package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/biblioteka-go/apperror"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "not found maps to 404 fail",
			err:        apperror.NewNotFoundError("no books found", nil),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"status":"fail","message":"no books found"}`,
		},
		{
			name:       "auth error maps to 401 fail",
			err:        apperror.NewAuthError("incorrect password", nil),
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"status":"fail","message":"incorrect password"}`,
		},
		{
			name:       "database error maps to 500 error",
			err:        apperror.NewDatabaseError("failed to list books", errors.New("connection refused")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"status":"error","message":"failed to list books"}`,
		},
		{
			name:       "plain errors are masked as internal",
			err:        errors.New("pq: something leaked"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"status":"error","message":"something went wrong"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)

			WriteError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestNotFoundHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/no/such/route", nil)

	NotFoundHandler()(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "can't find /no/such/route on this server")
}

func TestMethodNotAllowedHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/books/1", nil)

	MethodNotAllowedHandler()(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "the PUT method is not supported")
}
