package model

import "time"

const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// User represents a registered account
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never leaves the server
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"-"`
}

// UserProfile is the client-facing view of a User
type UserProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Profile strips server-only fields from the user
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}

// SignupRequest is the body of POST /auth/signup. Format rules are
// enforced by the service after normalization.
type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// MeResponse is returned by GET /auth/me
type MeResponse struct {
	User UserProfile `json:"user"`
}
