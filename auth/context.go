package auth

import "context"

// contextKey is a private type so our context keys cannot collide with
// keys from other packages.
type contextKey string

const userContextKey contextKey = "current_user"

// NewContextWithUser returns a child context carrying the resolved user.
func NewContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the user attached by the Protect middleware.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok
}
