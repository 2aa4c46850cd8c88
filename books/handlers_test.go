package books

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterBooks_AllowList(t *testing.T) {
	// The service is never reached for a disallowed filter key, so a nil
	// database is safe here.
	validate := validator.New(validator.WithRequiredStructEnabled())
	require.NoError(t, RegisterValidations(validate))
	handlers := NewHandlers(NewBookService(nil), validate)

	tests := []struct {
		name  string
		query string
	}{
		{name: "unknown field", query: "genre=horror"},
		{name: "unknown field alongside allowed ones", query: "title=go&publisher=acme"},
		{name: "misspelled allowed field", query: "author_id=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/books/filter?"+tt.query, nil)

			handlers.filterBooks(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid field")
			assert.Contains(t, rec.Body.String(), "allowed fields are: title, authorId, isbn")
		})
	}
}

func TestQueryFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/books?page=2&limit=5&title=go&authorId=3", nil)

	q := queryFromRequest(req)

	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 5, q.Limit)
	assert.Equal(t, "go", q.Title)
	assert.Equal(t, 3, q.AuthorID)
	assert.Empty(t, q.ISBN)
}

func TestNewBookRequestValidation(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	require.NoError(t, RegisterValidations(validate))

	tests := []struct {
		name    string
		req     NewBookRequest
		wantErr bool
	}{
		{
			name: "valid hyphenated isbn-13",
			req:  NewBookRequest{Title: "Go in Practice", ISBN: "978-1-61729-910-2", AuthorID: 1},
		},
		{
			name: "valid bare isbn-10",
			req:  NewBookRequest{Title: "Go in Practice", ISBN: "0136019702", AuthorID: 1},
		},
		{
			name:    "isbn too short",
			req:     NewBookRequest{Title: "Go in Practice", ISBN: "123-456", AuthorID: 1},
			wantErr: true,
		},
		{
			name:    "isbn with letters",
			req:     NewBookRequest{Title: "Go in Practice", ISBN: "978-1-6172X-910", AuthorID: 1},
			wantErr: true,
		},
		{
			name:    "title too short",
			req:     NewBookRequest{Title: "Go", ISBN: "0136019702", AuthorID: 1},
			wantErr: true,
		},
		{
			name:    "missing author",
			req:     NewBookRequest{Title: "Go in Practice", ISBN: "0136019702"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
