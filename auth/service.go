// Package auth implements the authentication and authorization
// subsystem: credential hashing, session token issue/verification,
// registration, login, and the request guards for protected routes.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/biblioteka-go/apperror"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations. The users.username unique index is the authoritative
// duplicate guard; the service-level pre-check only improves the error
// message for the common case.
const pgUniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the auth service uses. Declared as
// an interface so tests can substitute a pgxmock pool.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AuthService provides registration, login and current-user resolution.
type AuthService struct {
	db     DB
	hasher *PasswordHasher
	tokens *TokenIssuer
}

// NewAuthService creates an AuthService with its dependencies.
func NewAuthService(db DB, hasher *PasswordHasher, tokens *TokenIssuer) *AuthService {
	return &AuthService{db: db, hasher: hasher, tokens: tokens}
}

// Register creates a new user and issues a session token for it.
// A taken username fails with a conflict, whether caught by the
// pre-check or by the unique constraint when two registrations race.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*User, string, error) {
	if _, err := s.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, "", apperror.NewConflictError("username already exists", nil)
	} else if !apperror.IsNotFound(err) {
		return nil, "", err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, "", apperror.NewInternalError("failed to hash password", err)
	}

	role := req.Role
	if role == "" {
		role = RoleUser
	}

	user := &User{Username: req.Username, Role: role}
	query := `INSERT INTO users (username, password, role)
	          VALUES ($1, $2, $3)
	          RETURNING id`
	err = s.db.QueryRow(ctx, query, req.Username, hashed, role).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, "", apperror.NewConflictError("username already exists", nil)
		}
		return nil, "", apperror.NewDatabaseError("failed to create user", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", apperror.NewInternalError("failed to issue token", err)
	}
	return user, token, nil
}

// Login verifies the credentials and issues a session token. An unknown
// username is reported as not found, a hash mismatch as incorrect
// password.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*User, string, error) {
	user, err := s.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, "", apperror.NewNotFoundError("user not found, please sign up", nil)
		}
		return nil, "", err
	}

	if !s.hasher.Verify(user.HashedPassword, req.Password) {
		return nil, "", apperror.NewAuthError("incorrect password", nil)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", apperror.NewInternalError("failed to issue token", err)
	}
	return user, token, nil
}

// CurrentUser resolves a session token to the user it was issued for.
// It fails with an auth error when the token is invalid or expired, or
// when the referenced user no longer exists.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, apperror.NewAuthError("your session has expired, please log in again", err)
		}
		return nil, apperror.NewAuthError("invalid token, please log in again", err)
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewAuthError("the user belonging to this token no longer exists", nil)
		}
		return nil, err
	}
	return user, nil
}

// GetUserByUsername fetches a user, including the password hash, by
// username.
func (s *AuthService) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	query := `SELECT id, username, password, role FROM users WHERE username = $1`
	err := s.db.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.HashedPassword, &user.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user %q not found", username), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by username", err)
	}
	return &user, nil
}

// GetUserByID fetches a user by id. The password hash is not loaded.
func (s *AuthService) GetUserByID(ctx context.Context, id int) (*User, error) {
	var user User
	query := `SELECT id, username, role FROM users WHERE id = $1`
	err := s.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Username, &user.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by id", err)
	}
	return &user, nil
}
