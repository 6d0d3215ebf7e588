package models

import (
	"time"

	"github.com/google/uuid"
)

// User представляет пользователя магазина.
type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	Phone        string    `db:"phone"`
	PasswordHash string    `db:"password_hash"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Identity текущий аутентифицированный пользователь, как его видит оформление заказа.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

// RegisterRequest - запрос на регистрацию пользователя.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// LoginRequest - запрос на аутентификацию пользователя.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse - публичные данные пользователя.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}

// ToResponse преобразует пользователя в DTO.
func (u *User) ToResponse() *UserResponse {
	role := "user"
	if u.IsAdmin {
		role = "admin"
	}
	return &UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: role}
}
