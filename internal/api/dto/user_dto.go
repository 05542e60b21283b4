package dto

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// RegisterRequest payload for new accounts. Role defaults to USER.
type RegisterRequest struct {
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	Role      domain.Role `json:"role,omitempty"`
	AreaID    *string     `json:"area_id,omitempty"`
	ManagerID *string     `json:"manager_id,omitempty"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	AreaID    *string     `json:"area_id,omitempty"`
	ManagerID *string     `json:"manager_id,omitempty"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		AreaID:    user.AreaID,
		ManagerID: user.ManagerID,
	}
}
