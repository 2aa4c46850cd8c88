package authors

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/biblioteka-go/apperror"
	"github.com/user/biblioteka-go/pagination"
)

// PostgreSQL error codes the service maps to domain errors. The
// foreign key on books.author_id is the authoritative guard against
// deleting a referenced author; the pre-check only improves the error.
const pgForeignKeyViolation = "23503"

// DB is the subset of pgxpool.Pool the author service uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PaginatedAuthors is one page of authors plus pagination metadata.
type PaginatedAuthors struct {
	Authors  []Author
	Metadata pagination.Metadata
}

// AuthorService provides CRUD over authors.
type AuthorService struct {
	db DB
}

// NewAuthorService creates an AuthorService.
func NewAuthorService(db DB) *AuthorService {
	return &AuthorService{db: db}
}

// booksAggregate embeds each author's books as a JSON array, COALESCEd
// so authors without books get [] instead of NULL.
const booksAggregate = `COALESCE(
	(SELECT json_agg(books) FROM books WHERE books.author_id = authors.id),
	'[]'::json
)`

// scanAuthor reads one author row of the shape
// (id, name, birth_date, biography, books-json).
func scanAuthor(row pgx.Row) (*Author, error) {
	var (
		author    Author
		birthDate time.Time
		biography sql.NullString
		booksJSON []byte
	)
	if err := row.Scan(&author.ID, &author.Name, &birthDate, &biography, &booksJSON); err != nil {
		return nil, err
	}
	author.BirthDate = birthDate.Format("2006-01-02")
	if biography.Valid {
		author.Biography = &biography.String
	}
	if err := json.Unmarshal(booksJSON, &author.Books); err != nil {
		return nil, fmt.Errorf("failed to decode books aggregate: %w", err)
	}
	return &author, nil
}

// Create inserts a new author and returns it with an empty book list.
func (s *AuthorService) Create(ctx context.Context, req NewAuthorRequest) (*Author, error) {
	query := `INSERT INTO authors (name, birth_date, biography)
	          VALUES ($1, $2, $3)
	          RETURNING id, name, birth_date, biography, '[]'::json`
	author, err := scanAuthor(s.db.QueryRow(ctx, query, req.Name, req.BirthDate, req.Biography))
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create author", err)
	}
	return author, nil
}

// List returns one page of authors ordered by name, with the total
// computed by a separate count query over the whole table.
func (s *AuthorService) List(ctx context.Context, params pagination.Params) (*PaginatedAuthors, error) {
	params = params.Normalize()

	query := `SELECT authors.id, authors.name, authors.birth_date, authors.biography, ` + booksAggregate + `
	          FROM authors
	          ORDER BY authors.name ASC
	          LIMIT $1 OFFSET $2`
	rows, err := s.db.Query(ctx, query, params.Limit, params.Offset())
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list authors", err)
	}
	defer rows.Close()

	authors := []Author{}
	for rows.Next() {
		author, err := scanAuthor(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan author", err)
		}
		authors = append(authors, *author)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list authors", err)
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM authors`).Scan(&total); err != nil {
		return nil, apperror.NewDatabaseError("failed to count authors", err)
	}

	return &PaginatedAuthors{
		Authors:  authors,
		Metadata: pagination.NewMetadata(params, total),
	}, nil
}

// GetByID returns one author with its books, or nil when no such row
// exists.
func (s *AuthorService) GetByID(ctx context.Context, id int) (*Author, error) {
	query := `SELECT authors.id, authors.name, authors.birth_date, authors.biography, ` + booksAggregate + `
	          FROM authors
	          WHERE authors.id = $1`
	author, err := scanAuthor(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.NewDatabaseError("failed to get author", err)
	}
	return author, nil
}

// Update applies the supplied fields to an author. It fails when no
// fields are given and returns nil when the id does not exist.
func (s *AuthorService) Update(ctx context.Context, id int, req UpdateAuthorRequest) (*Author, error) {
	var setClauses []string
	var args []any
	argID := 1

	if req.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argID))
		args = append(args, *req.Name)
		argID++
	}
	if req.BirthDate != nil {
		setClauses = append(setClauses, fmt.Sprintf("birth_date = $%d", argID))
		args = append(args, *req.BirthDate)
		argID++
	}
	if req.Biography != nil {
		setClauses = append(setClauses, fmt.Sprintf("biography = $%d", argID))
		args = append(args, *req.Biography)
		argID++
	}

	if len(setClauses) == 0 {
		return nil, apperror.NewBadRequestError("no fields provided for update", nil)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE authors
	          SET %s
	          WHERE id = $%d
	          RETURNING id, name, birth_date, biography, `+booksAggregate,
		strings.Join(setClauses, ", "), argID)

	author, err := scanAuthor(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.NewDatabaseError("failed to update author", err)
	}
	return author, nil
}

// Delete removes an author and returns the deleted snapshot, or nil
// when the id does not exist. Deletion is refused while any book still
// references the author.
func (s *AuthorService) Delete(ctx context.Context, id int) (*Author, error) {
	var bookID int
	err := s.db.QueryRow(ctx, `SELECT id FROM books WHERE author_id = $1 LIMIT 1`, id).Scan(&bookID)
	if err == nil {
		return nil, apperror.NewConflictError("cannot delete author with existing books", nil)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewDatabaseError("failed to check author's books", err)
	}

	query := `DELETE FROM authors
	          WHERE id = $1
	          RETURNING id, name, birth_date, biography, '[]'::json`
	author, err := scanAuthor(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, apperror.NewConflictError("cannot delete author with existing books", nil)
		}
		return nil, apperror.NewDatabaseError("failed to delete author", err)
	}
	return author, nil
}
