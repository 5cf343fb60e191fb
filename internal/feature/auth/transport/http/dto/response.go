package dto

import (
	"time"

	"account_backend/internal/feature/auth/domain/entity"
)

// UserRes is the public representation of a user. It never carries the digest.
type UserRes struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserRes converts an entity to its response form.
func NewUserRes(u *entity.User) UserRes {
	return UserRes{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// TokenRes is returned by a successful login.
type TokenRes struct {
	Token string  `json:"token"`
	User  UserRes `json:"user"`
}

// FieldErrorRes describes one failed constraint.
type FieldErrorRes struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorRes is the body of every error response.
type ErrorRes struct {
	Error  string          `json:"error"`
	Fields []FieldErrorRes `json:"fields,omitempty"`
}
