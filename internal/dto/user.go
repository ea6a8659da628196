package dto

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the JSON body for POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=1,max=120"`
	Password string `json:"password" binding:"required,min=1"`
}

// UserResponse describes the current user. Anonymous sessions get
// Authenticated=false and no id.
type UserResponse struct {
	Authenticated bool   `json:"isAuthenticated"`
	ID            int64  `json:"userId,omitempty"`
	Username      string `json:"username,omitempty"`
}
