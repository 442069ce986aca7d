package dto

import (
	"time"

	"github.com/noah-isme/presta-go-api/internal/models"
)

// RegisterRequest describes the payload for account creation. The role is
// fixed here and never changes afterwards.
type RegisterRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=255"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	Role       string `json:"role" validate:"required,oneof=student faculty"`
	Department string `json:"department" validate:"omitempty,max=255"`
}

// LoginRequest describes the credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries the signed token pair returned on login.
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         UserResponse `json:"user"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewUserResponse converts a User model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:         model.ID,
		Name:       model.Name,
		Email:      model.Email,
		Role:       model.Role,
		Department: model.Department,
		CreatedAt:  model.CreatedAt,
	}
}
