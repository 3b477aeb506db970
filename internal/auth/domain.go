package auth

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Client-facing messages for the auth endpoints.
const (
	MsgMissingFields      = "Please provide all fields"
	MsgInvalidCredentials = "Invalid credentials"
	MsgUserGone           = "Not authorized, user not found"
	MsgLoggedOut          = "Logged out successfully"
)
