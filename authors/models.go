// Package authors implements the author resource: model, data access
// and HTTP handlers. Authors own zero or more books; an author cannot
// be deleted while any book still references it.
package authors

// Author is an author record together with its books, as returned by
// the API. Books is populated from a json_agg subquery and is never
// null, only possibly empty.
type Author struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	BirthDate string  `json:"birth_date"`
	Biography *string `json:"biography"`
	Books     []Book  `json:"books"`
}

// Book is the projection of a book row embedded in an author response.
type Book struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	Summary   *string `json:"summary"`
	ISBN      string  `json:"isbn"`
	AuthorID  int     `json:"author_id"`
	CreatedAt string  `json:"created_at"`
}

// NewAuthorRequest is the payload for creating an author.
type NewAuthorRequest struct {
	Name      string  `json:"name" validate:"required,min=2" example:"Jane Doe"`
	BirthDate string  `json:"birth_date" validate:"required,datetime=2006-01-02" example:"1970-01-01"`
	Biography *string `json:"biography,omitempty" validate:"omitempty,max=150"`
}

// UpdateAuthorRequest is the payload for partially updating an author.
// Nil fields are left untouched; at least one field must be supplied.
type UpdateAuthorRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=2"`
	BirthDate *string `json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Biography *string `json:"biography,omitempty" validate:"omitempty,max=150"`
}
