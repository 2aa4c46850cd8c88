package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/user/biblioteka-go/apperror"
)

// maxBodyBytes caps request bodies at 1 MB.
const maxBodyBytes = 1_048_576

// DecodeJSON decodes a single JSON value from the request body into dst.
// Unknown fields, oversized bodies and trailing values are rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.NewBadRequestError("request body must have data", nil)
		}
		return apperror.NewBadRequestError("invalid request body: "+err.Error(), err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return apperror.NewBadRequestError("request body must contain a single JSON value", nil)
	}
	return nil
}

// ReadIDParam extracts a positive integer URL parameter registered with
// the chi router, e.g. /books/{id}.
func ReadIDParam(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id < 1 {
		return 0, apperror.NewBadRequestError("invalid "+name+" parameter", nil)
	}
	return id, nil
}

// ReadString reads a query parameter, returning defaultValue when the
// key is absent or empty.
func ReadString(qs url.Values, key, defaultValue string) string {
	s := qs.Get(key)
	if s == "" {
		return defaultValue
	}
	return s
}

// ReadInt reads an integer query parameter, returning defaultValue when
// the key is absent or unparsable.
func ReadInt(qs url.Values, key string, defaultValue int) int {
	s := qs.Get(key)
	if s == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}

// CheckValidation runs struct-tag validation on req and converts any
// field failures into a single ValidationError listing every field, so
// the client sees all problems at once before business logic runs.
func CheckValidation(v *validator.Validate, req any) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewValidationError("invalid request", err)
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldMessage(fe))
	}
	return apperror.NewValidationError(strings.Join(messages, "; "), nil)
}

// fieldMessage renders one validation failure as "field: problem".
func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + ": is required"
	case "min":
		return field + ": must be at least " + fe.Param() + " characters"
	case "max":
		return field + ": must not exceed " + fe.Param() + " characters"
	case "oneof":
		return field + ": must be one of " + fe.Param()
	case "eqfield":
		return field + ": does not match " + strings.ToLower(fe.Param())
	case "datetime":
		return field + ": must be a valid date in " + fe.Param() + " format"
	case "gte":
		return field + ": must be at least " + fe.Param()
	default:
		return field + ": is invalid"
	}
}
