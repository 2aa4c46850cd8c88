// Package books implements the book resource: model, data access with
// pagination and allow-listed filtering, and HTTP handlers. Every book
// references an existing author; the reference is verified before any
// write and enforced by the schema's foreign key.
package books

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// isbnPattern accepts 10 to 17 characters of digits and hyphens,
// covering ISBN-10 and hyphenated ISBN-13 forms.
var isbnPattern = regexp.MustCompile(`^[0-9-]{10,17}$`)

// RegisterValidations adds the book-specific "isbnlike" rule to a
// validator instance. Call once at startup.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("isbnlike", func(fl validator.FieldLevel) bool {
		return isbnPattern.MatchString(fl.Field().String())
	})
}

// Book is a book record with its author embedded, as returned by the
// API. The author comes from a row_to_json join.
type Book struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Summary   *string   `json:"summary"`
	ISBN      string    `json:"isbn"`
	AuthorID  int       `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	Author    *Author   `json:"author"`
}

// Author is the projection of the referenced author row embedded in a
// book response.
type Author struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	BirthDate string  `json:"birth_date"`
	Biography *string `json:"biography"`
}

// NewBookRequest is the payload for creating a book.
type NewBookRequest struct {
	Title    string  `json:"title" validate:"required,min=3" example:"Go in Practice"`
	Summary  *string `json:"summary,omitempty"`
	ISBN     string  `json:"isbn" validate:"required,isbnlike" example:"978-1-61729-910-2"`
	AuthorID int     `json:"author_id" validate:"required,gte=1" example:"1"`
}

// UpdateBookRequest is the payload for partially updating a book.
// Nil fields are left untouched; at least one field must be supplied.
type UpdateBookRequest struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,min=3"`
	Summary  *string `json:"summary,omitempty"`
	ISBN     *string `json:"isbn,omitempty" validate:"omitempty,isbnlike"`
	AuthorID *int    `json:"author_id,omitempty" validate:"omitempty,gte=1"`
}

// ListBooksQuery carries the pagination and filter parameters for the
// book list. Filters are combined with AND; zero values mean "not
// filtered".
type ListBooksQuery struct {
	Page     int
	Limit    int
	Title    string // case-insensitive substring match
	AuthorID int    // exact match
	ISBN     string // exact match
}
