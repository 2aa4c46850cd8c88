package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/biblioteka-go/apperror"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid body", body: `{"name":"alice"}`},
		{name: "empty body", body: "", wantErr: "request body must have data"},
		{name: "malformed json", body: `{"name":`, wantErr: "invalid request body"},
		{name: "unknown field", body: `{"name":"alice","extra":1}`, wantErr: "invalid request body"},
		{name: "two json values", body: `{"name":"alice"}{"name":"bob"}`, wantErr: "single JSON value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst payload
			err := DecodeJSON(rec, req, &dst)

			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "alice", dst.Name)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				appErr, ok := apperror.FromError(err)
				require.True(t, ok)
				assert.Equal(t, http.StatusBadRequest, appErr.StatusCode())
			}
		})
	}
}

func TestReadIDParam(t *testing.T) {
	newRequest := func(id string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/books/"+id, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	t.Run("parses a positive id", func(t *testing.T) {
		id, err := ReadIDParam(newRequest("42"), "id")
		require.NoError(t, err)
		assert.Equal(t, 42, id)
	})

	t.Run("rejects non-numeric ids", func(t *testing.T) {
		_, err := ReadIDParam(newRequest("abc"), "id")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid id parameter")
	})

	t.Run("rejects zero and negative ids", func(t *testing.T) {
		_, err := ReadIDParam(newRequest("0"), "id")
		assert.Error(t, err)
		_, err = ReadIDParam(newRequest("-3"), "id")
		assert.Error(t, err)
	})
}

func TestCheckValidation(t *testing.T) {
	type form struct {
		Username string `validate:"required"`
		Password string `validate:"required,min=4"`
		Confirm  string `validate:"eqfield=Password"`
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	t.Run("passes a valid struct", func(t *testing.T) {
		err := CheckValidation(validate, form{Username: "alice", Password: "pw123", Confirm: "pw123"})
		assert.NoError(t, err)
	})

	t.Run("collects every failing field into one error", func(t *testing.T) {
		err := CheckValidation(validate, form{Password: "pw", Confirm: "other"})
		require.Error(t, err)
		assert.True(t, apperror.IsValidationError(err))
		assert.Contains(t, err.Error(), "username: is required")
		assert.Contains(t, err.Error(), "password: must be at least 4 characters")
		assert.Contains(t, err.Error(), "confirm: does not match password")
	})
}
