package books

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/user/biblioteka-go/apperror"
	"github.com/user/biblioteka-go/pagination"
	"github.com/user/biblioteka-go/web"
)

// filterAllowList is the fixed set of filter fields /books/filter
// accepts, besides the pagination keys. Anything else is rejected
// before a query runs.
var filterAllowList = []string{"title", "authorId", "isbn"}

// Handlers exposes the book service over HTTP.
type Handlers struct {
	service  *BookService
	validate *validator.Validate
}

// NewHandlers creates the book handlers.
func NewHandlers(service *BookService, validate *validator.Validate) *Handlers {
	return &Handlers{service: service, validate: validate}
}

// RegisterPublicRoutes mounts the unauthenticated book routes. The
// /filter and /author prefixes must be registered before /{id} so chi
// does not swallow them as id values.
func (h *Handlers) RegisterPublicRoutes(r chi.Router) {
	r.Get("/", h.listBooks)
	r.Get("/filter", h.filterBooks)
	r.Get("/author/{authorId}", h.listBooksByAuthor)
	r.Get("/{id}", h.getBook)
}

// RegisterAdminRoutes mounts the write routes. The caller wraps them
// in the Protect and RequireRole middleware.
func (h *Handlers) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.createBook)
	r.Patch("/{id}", h.updateBook)
	r.Delete("/{id}", h.deleteBook)
}

// queryFromRequest reads the shared list parameters.
func queryFromRequest(r *http.Request) ListBooksQuery {
	qs := r.URL.Query()
	params := pagination.ParseQuery(qs)
	return ListBooksQuery{
		Page:     params.Page,
		Limit:    params.Limit,
		Title:    web.ReadString(qs, "title", ""),
		AuthorID: web.ReadInt(qs, "authorId", 0),
		ISBN:     web.ReadString(qs, "isbn", ""),
	}
}

// writeBookPage writes the standard paginated list envelope.
func writeBookPage(w http.ResponseWriter, r *http.Request, result *PaginatedBooks) {
	web.WriteJSON(w, http.StatusOK, web.Envelope{
		Status:       "success",
		ResultsCount: web.Count(len(result.Books)),
		Pagination:   &result.Metadata,
		RequestedAt:  web.RequestTimeFromContext(r.Context()),
		Data:         result.Books,
	})
}

// listBooks godoc
// @Summary List books
// @Description Returns a page of books, newest first, optionally filtered by title substring and author.
// @Tags books
// @Produce json
// @Param page query int false "page number" default(1)
// @Param limit query int false "page size" default(10)
// @Param title query string false "case-insensitive title substring"
// @Param authorId query int false "author id"
// @Success 200 {object} web.Envelope
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/v1/books [get]
func (h *Handlers) listBooks(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context(), queryFromRequest(r))
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	if len(result.Books) == 0 {
		web.WriteError(w, r, apperror.NewNotFoundError("no books found", nil))
		return
	}
	writeBookPage(w, r, result)
}

// filterBooks godoc
// @Summary List books with strict filters
// @Description Like the plain list, but every query key must be on the filter allow-list.
// @Tags books
// @Produce json
// @Param title query string false "case-insensitive title substring"
// @Param authorId query int false "author id"
// @Param isbn query string false "exact ISBN"
// @Success 200 {object} web.Envelope
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/v1/books/filter [get]
func (h *Handlers) filterBooks(w http.ResponseWriter, r *http.Request) {
	for key := range r.URL.Query() {
		if key == "page" || key == "limit" {
			continue
		}
		allowed := false
		for _, field := range filterAllowList {
			if key == field {
				allowed = true
				break
			}
		}
		if !allowed {
			web.WriteError(w, r, apperror.NewBadRequestError(
				fmt.Sprintf("invalid field %q, allowed fields are: %s", key, strings.Join(filterAllowList, ", ")), nil))
			return
		}
	}

	result, err := h.service.List(r.Context(), queryFromRequest(r))
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	if len(result.Books) == 0 {
		web.WriteError(w, r, apperror.NewNotFoundError("no books found with the specified filters", nil))
		return
	}
	writeBookPage(w, r, result)
}

// listBooksByAuthor godoc
// @Summary List one author's books
// @Tags books
// @Produce json
// @Param authorId path int true "author id"
// @Success 200 {object} web.Envelope
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/v1/books/author/{authorId} [get]
func (h *Handlers) listBooksByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID, err := web.ReadIDParam(r, "authorId")
	if err != nil {
		web.WriteError(w, r, err)
		return
	}

	list, err := h.service.ListByAuthor(r.Context(), authorID)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	if len(list) == 0 {
		web.WriteError(w, r, apperror.NewNotFoundError("no books found for this author", nil))
		return
	}

	web.WriteJSON(w, http.StatusOK, web.Envelope{
		Status:       "success",
		ResultsCount: web.Count(len(list)),
		Data:         list,
	})
}

// getBook godoc
// @Summary Get one book
// @Tags books
// @Produce json
// @Param id path int true "book id"
// @Success 200 {object} web.Envelope
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/v1/books/{id} [get]
func (h *Handlers) getBook(w http.ResponseWriter, r *http.Request) {
	id, err := web.ReadIDParam(r, "id")
	if err != nil {
		web.WriteError(w, r, err)
		return
	}

	book, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	if book == nil {
		web.WriteError(w, r, apperror.NewNotFoundError("invalid book ID", nil))
		return
	}

	web.WriteJSON(w, http.StatusOK, web.Success(book))
}

// createBook godoc
// @Summary Create a book
// @Description The author_id must reference an existing author.
// @Tags books
// @Accept json
// @Produce json
// @Param body body books.NewBookRequest true "book details"
// @Success 201 {object} web.Envelope
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Router /api/v1/books [post]
func (h *Handlers) createBook(w http.ResponseWriter, r *http.Request) {
	var req NewBookRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteError(w, r, err)
		return
	}
	defer r.Body.Close()

	if err := web.CheckValidation(h.validate, req); err != nil {
		web.WriteError(w, r, err)
		return
	}

	book, err := h.service.Create(r.Context(), req)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}

	web.WriteJSON(w, http.StatusCreated, web.Success(book))
}

// updateBook godoc
// @Summary Partially update a book
// @Tags books
// @Accept json
// @Produce json
// @Param id path int true "book id"
// @Param body body books.UpdateBookRequest true "fields to update"
// @Success 200 {object} web.Envelope
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/v1/books/{id} [patch]
func (h *Handlers) updateBook(w http.ResponseWriter, r *http.Request) {
	id, err := web.ReadIDParam(r, "id")
	if err != nil {
		web.WriteError(w, r, err)
		return
	}

	var req UpdateBookRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteError(w, r, err)
		return
	}
	defer r.Body.Close()

	if err := web.CheckValidation(h.validate, req); err != nil {
		web.WriteError(w, r, err)
		return
	}

	book, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	if book == nil {
		web.WriteError(w, r, apperror.NewNotFoundError("invalid book ID", nil))
		return
	}

	web.WriteJSON(w, http.StatusOK, web.Success(book))
}

// deleteBook godoc
// @Summary Delete a book
// @Tags books
// @Produce json
// @Param id path int true "book id"
// @Success 200 {object} web.Envelope
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/v1/books/{id} [delete]
func (h *Handlers) deleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := web.ReadIDParam(r, "id")
	if err != nil {
		web.WriteError(w, r, err)
		return
	}

	book, err := h.service.Delete(r.Context(), id)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	if book == nil {
		web.WriteError(w, r, apperror.NewNotFoundError("invalid book ID", nil))
		return
	}

	web.WriteJSON(w, http.StatusOK, web.SuccessMessage("book deleted successfully"))
}
