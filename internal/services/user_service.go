package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agamariel/storefront/internal/auth"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyCredentials   = errors.New("email and password are required")
)

// UserService определяет интерфейс для работы с пользователями.
type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
}

// UserServiceImpl реализует UserService.
type UserServiceImpl struct {
	userStorage     storage.UserStorage
	jwtSecret       string
	tokenExpiration time.Duration
}

// NewUserService создаёт новый экземпляр UserService.
func NewUserService(userStorage storage.UserStorage, jwtSecret string, tokenExpiration time.Duration) *UserServiceImpl {
	return &UserServiceImpl{
		userStorage:     userStorage,
		jwtSecret:       jwtSecret,
		tokenExpiration: tokenExpiration,
	}
}

// Register регистрирует нового покупателя.
func (s *UserServiceImpl) Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, "", ErrEmptyCredentials
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = email
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: passwordHash,
	}

	err = s.userStorage.Create(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrEmailExists) {
			return nil, "", storage.ErrEmailExists
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login аутентифицирует пользователя по email и паролю.
func (s *UserServiceImpl) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", ErrEmptyCredentials
	}

	user, err := s.userStorage.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// generateToken генерирует JWT токен для пользователя.
func (s *UserServiceImpl) generateToken(user *models.User) (string, error) {
	exp := s.tokenExpiration
	if exp <= 0 {
		exp = 24 * time.Hour
	}
	return auth.GenerateToken(user, s.jwtSecret, exp)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
