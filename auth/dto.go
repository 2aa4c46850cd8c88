package auth

// RegisterRequest is the registration payload. The password must be
// confirmed and the role, when given, must be one of the known roles.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required" example:"alice"`
	Password        string `json:"password" validate:"required" example:"correct horse battery staple"`
	PasswordConfirm string `json:"passwordconfirm" validate:"required,eqfield=Password" example:"correct horse battery staple"`
	Role            string `json:"role,omitempty" validate:"omitempty,oneof=user admin" example:"user"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Password string `json:"password" validate:"required" example:"correct horse battery staple"`
}

// LoginData wraps the authenticated user in the login response body.
type LoginData struct {
	User *User `json:"user"`
}
