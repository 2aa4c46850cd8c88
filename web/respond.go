// Package web contains the HTTP plumbing shared by all handlers: the
// JSON response envelope, request body decoding, URL parameter readers
// and small middleware. Handlers stay thin by delegating every wire
// concern here.
package web

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/user/biblioteka-go/apperror"
	"github.com/user/biblioteka-go/pagination"
)

// Envelope is the uniform JSON body for successful responses.
// Failure bodies share the same shape via apperror.ErrorResponse.
type Envelope struct {
	Status       string               `json:"status"`
	Message      string               `json:"message,omitempty"`
	ResultsCount *int                 `json:"resultsCount,omitempty"`
	Pagination   *pagination.Metadata `json:"pagination,omitempty"`
	RequestedAt  string               `json:"requestedAt,omitempty"`
	Data         any                  `json:"data,omitempty"`
}

// Success builds a success envelope around data.
func Success(data any) Envelope {
	return Envelope{Status: "success", Data: data}
}

// SuccessMessage builds a success envelope carrying only a message.
func SuccessMessage(message string) Envelope {
	return Envelope{Status: "success", Message: message}
}

// Count returns a pointer to n for use as Envelope.ResultsCount.
func Count(n int) *int {
	return &n
}

// WriteJSON serializes v and writes it with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error","message":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// WriteError converts any error into the uniform failure envelope.
// Errors that are not *AppError are treated as internal: logged with
// their cause and reported to the client with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("something went wrong", err)
	}
	if appErr.StatusCode() >= 500 {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}

// NotFoundHandler answers unmatched routes with the standard envelope.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, apperror.NewNotFoundError("can't find "+r.URL.Path+" on this server", nil))
	}
}

// MethodNotAllowedHandler answers unsupported methods on known routes.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appErr := apperror.NewBadRequestError("the "+r.Method+" method is not supported for this resource", nil)
		WriteJSON(w, http.StatusMethodNotAllowed, appErr.ToResponse())
	}
}
