package auth

// User roles. The role column is constrained to these two values.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account in the system. The password hash is never
// serialized into responses.
type User struct {
	ID             int    `json:"id"`
	Username       string `json:"username"`
	Role           string `json:"role"`
	HashedPassword string `json:"-"`
}
