package books

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/biblioteka-go/apperror"
	"github.com/user/biblioteka-go/pagination"
)

// pgForeignKeyViolation guards book writes whose author_id races past
// the existence pre-check; the schema's foreign key is authoritative.
const pgForeignKeyViolation = "23503"

// DB is the subset of pgxpool.Pool the book service uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PaginatedBooks is one page of books plus pagination metadata.
type PaginatedBooks struct {
	Books    []Book
	Metadata pagination.Metadata
}

// BookService provides CRUD and filtered listing over books.
type BookService struct {
	db DB
}

// NewBookService creates a BookService.
func NewBookService(db DB) *BookService {
	return &BookService{db: db}
}

// authorJSON embeds the referenced author row as JSON on writes, where
// no join is available on the RETURNING clause. On reads the joined row
// is serialized directly with row_to_json(authors).
const authorJSON = `(SELECT row_to_json(authors) FROM authors WHERE authors.id = books.author_id)`

const selectAuthorJSON = `row_to_json(authors)`

// scanBook reads one book row of the shape
// (id, title, summary, isbn, author_id, created_at, author-json).
func scanBook(row pgx.Row) (*Book, error) {
	var (
		book       Book
		summary    sql.NullString
		authorJSON []byte
	)
	if err := row.Scan(&book.ID, &book.Title, &summary, &book.ISBN, &book.AuthorID, &book.CreatedAt, &authorJSON); err != nil {
		return nil, err
	}
	if summary.Valid {
		book.Summary = &summary.String
	}
	if len(authorJSON) > 0 {
		if err := json.Unmarshal(authorJSON, &book.Author); err != nil {
			return nil, fmt.Errorf("failed to decode author: %w", err)
		}
	}
	return &book, nil
}

// authorExists checks the referenced author row before a write.
func (s *BookService) authorExists(ctx context.Context, authorID int) error {
	var id int
	err := s.db.QueryRow(ctx, `SELECT id FROM authors WHERE id = $1`, authorID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewBadRequestError("invalid author ID, not found in authors table", nil)
		}
		return apperror.NewDatabaseError("failed to check author", err)
	}
	return nil
}

// Create inserts a new book after verifying its author exists, and
// returns it with the author embedded.
func (s *BookService) Create(ctx context.Context, req NewBookRequest) (*Book, error) {
	if err := s.authorExists(ctx, req.AuthorID); err != nil {
		return nil, err
	}

	query := `INSERT INTO books (title, summary, isbn, author_id)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, title, summary, isbn, author_id, created_at, ` + authorJSON
	book, err := scanBook(s.db.QueryRow(ctx, query, req.Title, req.Summary, req.ISBN, req.AuthorID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, apperror.NewBadRequestError("invalid author ID, not found in authors table", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create book", err)
	}
	return book, nil
}

// buildFilter composes the WHERE clause for a book list query from the
// allow-listed filters, ANDed together. It returns the clause (possibly
// empty) and its positional arguments.
func buildFilter(q ListBooksQuery) (string, []any) {
	var predicates []string
	var args []any
	argID := 1

	if q.Title != "" {
		predicates = append(predicates, fmt.Sprintf("books.title ILIKE '%%' || $%d || '%%'", argID))
		args = append(args, q.Title)
		argID++
	}
	if q.AuthorID > 0 {
		predicates = append(predicates, fmt.Sprintf("books.author_id = $%d", argID))
		args = append(args, q.AuthorID)
		argID++
	}
	if q.ISBN != "" {
		predicates = append(predicates, fmt.Sprintf("books.isbn = $%d", argID))
		args = append(args, q.ISBN)
		argID++
	}

	if len(predicates) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(predicates, " AND "), args
}

// List returns one page of books matching the query's filters, newest
// first. The total is a separate count over the same predicate so it
// reflects the full matching set, not the returned page.
func (s *BookService) List(ctx context.Context, q ListBooksQuery) (*PaginatedBooks, error) {
	params := pagination.Params{Page: q.Page, Limit: q.Limit}.Normalize()
	where, args := buildFilter(q)

	query := fmt.Sprintf(`SELECT books.id, books.title, books.summary, books.isbn, books.author_id, books.created_at, %s
	          FROM books
	          JOIN authors ON books.author_id = authors.id
	          %s
	          ORDER BY books.created_at DESC
	          LIMIT $%d OFFSET $%d`, selectAuthorJSON, where, len(args)+1, len(args)+2)

	rows, err := s.db.Query(ctx, query, append(args, params.Limit, params.Offset())...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list books", err)
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan book", err)
		}
		books = append(books, *book)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list books", err)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM books %s`, where)
	var total int
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, apperror.NewDatabaseError("failed to count books", err)
	}

	return &PaginatedBooks{
		Books:    books,
		Metadata: pagination.NewMetadata(params, total),
	}, nil
}

// GetByID returns one book with its author, or nil when no such row
// exists.
func (s *BookService) GetByID(ctx context.Context, id int) (*Book, error) {
	query := `SELECT books.id, books.title, books.summary, books.isbn, books.author_id, books.created_at, ` + selectAuthorJSON + `
	          FROM books
	          JOIN authors ON books.author_id = authors.id
	          WHERE books.id = $1`
	book, err := scanBook(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.NewDatabaseError("failed to get book", err)
	}
	return book, nil
}

// ListByAuthor returns all books written by one author.
func (s *BookService) ListByAuthor(ctx context.Context, authorID int) ([]Book, error) {
	query := `SELECT books.id, books.title, books.summary, books.isbn, books.author_id, books.created_at, ` + selectAuthorJSON + `
	          FROM books
	          JOIN authors ON books.author_id = authors.id
	          WHERE books.author_id = $1
	          ORDER BY books.created_at DESC`
	rows, err := s.db.Query(ctx, query, authorID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list books by author", err)
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan book", err)
		}
		books = append(books, *book)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list books by author", err)
	}
	return books, nil
}

// Update applies the supplied fields to a book. A changed author_id is
// verified to reference an existing author first. It fails when no
// fields are given and returns nil when the id does not exist.
func (s *BookService) Update(ctx context.Context, id int, req UpdateBookRequest) (*Book, error) {
	if req.AuthorID != nil {
		if err := s.authorExists(ctx, *req.AuthorID); err != nil {
			return nil, err
		}
	}

	var setClauses []string
	var args []any
	argID := 1

	if req.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argID))
		args = append(args, *req.Title)
		argID++
	}
	if req.Summary != nil {
		setClauses = append(setClauses, fmt.Sprintf("summary = $%d", argID))
		args = append(args, *req.Summary)
		argID++
	}
	if req.ISBN != nil {
		setClauses = append(setClauses, fmt.Sprintf("isbn = $%d", argID))
		args = append(args, *req.ISBN)
		argID++
	}
	if req.AuthorID != nil {
		setClauses = append(setClauses, fmt.Sprintf("author_id = $%d", argID))
		args = append(args, *req.AuthorID)
		argID++
	}

	if len(setClauses) == 0 {
		return nil, apperror.NewBadRequestError("no fields provided for update", nil)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE books
	          SET %s
	          WHERE id = $%d
	          RETURNING id, title, summary, isbn, author_id, created_at, `+authorJSON,
		strings.Join(setClauses, ", "), argID)

	book, err := scanBook(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, apperror.NewBadRequestError("invalid author ID, not found in authors table", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update book", err)
	}
	return book, nil
}

// Delete removes a book and returns the deleted snapshot without the
// author embedded, or nil when the id does not exist.
func (s *BookService) Delete(ctx context.Context, id int) (*Book, error) {
	query := `DELETE FROM books
	          WHERE id = $1
	          RETURNING id, title, summary, isbn, author_id, created_at, NULL::json`
	book, err := scanBook(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.NewDatabaseError("failed to delete book", err)
	}
	return book, nil
}
