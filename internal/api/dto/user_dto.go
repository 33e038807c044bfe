package dto

import "time"

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ActivateRequest consumes a one-time activation code.
type ActivateRequest struct {
	Code     string `json:"code"`
	Password string `json:"password"`
}

// InviteUserRequest payload for admin-driven account creation.
type InviteUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UpdateUserRequest payload.
type UpdateUserRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// SetActiveRequest toggles an account or course.
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// UserResponse response shape for accounts.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserListResponse splits accounts by activation state.
type UserListResponse struct {
	Active   []UserResponse `json:"active"`
	Inactive []UserResponse `json:"inactive"`
}
