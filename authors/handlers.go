package authors

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/user/biblioteka-go/apperror"
	"github.com/user/biblioteka-go/pagination"
	"github.com/user/biblioteka-go/web"
)

// Handlers exposes the author service over HTTP.
type Handlers struct {
	service  *AuthorService
	validate *validator.Validate
}

// NewHandlers creates the author handlers.
func NewHandlers(service *AuthorService, validate *validator.Validate) *Handlers {
	return &Handlers{service: service, validate: validate}
}

// RegisterPublicRoutes mounts the unauthenticated author routes.
func (h *Handlers) RegisterPublicRoutes(r chi.Router) {
	r.Get("/", h.listAuthors)
	r.Get("/{id}", h.getAuthor)
}

// RegisterAdminRoutes mounts the write routes. The caller wraps them
// in the Protect and RequireRole middleware.
func (h *Handlers) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.createAuthor)
	r.Patch("/{id}", h.updateAuthor)
	r.Delete("/{id}", h.deleteAuthor)
}

// listAuthors godoc
// @Summary List authors
// @Description Returns a page of authors ordered by name, each with its books.
// @Tags authors
// @Produce json
// @Param page query int false "page number" default(1)
// @Param limit query int false "page size" default(10)
// @Success 200 {object} web.Envelope
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/v1/authors [get]
func (h *Handlers) listAuthors(w http.ResponseWriter, r *http.Request) {
	params := pagination.ParseQuery(r.URL.Query())

	result, err := h.service.List(r.Context(), params)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	if len(result.Authors) == 0 {
		web.WriteError(w, r, apperror.NewNotFoundError("no authors found", nil))
		return
	}

	web.WriteJSON(w, http.StatusOK, web.Envelope{
		Status:       "success",
		ResultsCount: web.Count(len(result.Authors)),
		Pagination:   &result.Metadata,
		RequestedAt:  web.RequestTimeFromContext(r.Context()),
		Data:         result.Authors,
	})
}

// getAuthor godoc
// @Summary Get one author
// @Tags authors
// @Produce json
// @Param id path int true "author id"
// @Success 200 {object} web.Envelope
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/v1/authors/{id} [get]
func (h *Handlers) getAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := web.ReadIDParam(r, "id")
	if err != nil {
		web.WriteError(w, r, err)
		return
	}

	author, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	if author == nil {
		web.WriteError(w, r, apperror.NewNotFoundError("invalid author ID", nil))
		return
	}

	web.WriteJSON(w, http.StatusOK, web.Success(author))
}

// createAuthor godoc
// @Summary Create an author
// @Tags authors
// @Accept json
// @Produce json
// @Param body body authors.NewAuthorRequest true "author details"
// @Success 201 {object} web.Envelope
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Router /api/v1/authors [post]
func (h *Handlers) createAuthor(w http.ResponseWriter, r *http.Request) {
	var req NewAuthorRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteError(w, r, err)
		return
	}
	defer r.Body.Close()

	if err := web.CheckValidation(h.validate, req); err != nil {
		web.WriteError(w, r, err)
		return
	}

	author, err := h.service.Create(r.Context(), req)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}

	web.WriteJSON(w, http.StatusCreated, web.Success(author))
}

// updateAuthor godoc
// @Summary Partially update an author
// @Tags authors
// @Accept json
// @Produce json
// @Param id path int true "author id"
// @Param body body authors.UpdateAuthorRequest true "fields to update"
// @Success 200 {object} web.Envelope
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/v1/authors/{id} [patch]
func (h *Handlers) updateAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := web.ReadIDParam(r, "id")
	if err != nil {
		web.WriteError(w, r, err)
		return
	}

	var req UpdateAuthorRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteError(w, r, err)
		return
	}
	defer r.Body.Close()

	if err := web.CheckValidation(h.validate, req); err != nil {
		web.WriteError(w, r, err)
		return
	}

	author, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	if author == nil {
		web.WriteError(w, r, apperror.NewNotFoundError("invalid author ID", nil))
		return
	}

	web.WriteJSON(w, http.StatusOK, web.Success(author))
}

// deleteAuthor godoc
// @Summary Delete an author
// @Description Fails while any book still references the author.
// @Tags authors
// @Produce json
// @Param id path int true "author id"
// @Success 200 {object} web.Envelope
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /api/v1/authors/{id} [delete]
func (h *Handlers) deleteAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := web.ReadIDParam(r, "id")
	if err != nil {
		web.WriteError(w, r, err)
		return
	}

	author, err := h.service.Delete(r.Context(), id)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	if author == nil {
		web.WriteError(w, r, apperror.NewNotFoundError("invalid author ID", nil))
		return
	}

	web.WriteJSON(w, http.StatusOK, web.SuccessMessage("author deleted successfully"))
}
