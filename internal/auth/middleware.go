package auth

import (
	"net/http"
	"strings"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ContextKey - тип для ключей контекста.
type ContextKey string

const (
	// UserIDKey - ключ для хранения ID пользователя в контексте.
	UserIDKey ContextKey = "user_id"
	// UserEmailKey - ключ для хранения email пользователя в контексте.
	UserEmailKey ContextKey = "user_email"
	// UserNameKey - ключ для хранения имени пользователя в контексте.
	UserNameKey ContextKey = "user_name"
	// AdminKey - признак администратора.
	AdminKey ContextKey = "is_admin"
)

// JWTMiddleware создаёт middleware для проверки JWT токена.
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractTokenFromHeader(c)

			if token == "" {
				token = extractTokenFromCookie(c)
			}

			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid token")
			}

			claims, err := ValidateToken(token, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			// Сохранение данных пользователя в контексте
			c.Set(string(UserIDKey), claims.UserID)
			c.Set(string(UserEmailKey), claims.Email)
			c.Set(string(UserNameKey), claims.Name)
			c.Set(string(AdminKey), claims.Admin)

			return next(c)
		}
	}
}

// AdminMiddleware пропускает только администраторов. Ставится после JWTMiddleware.
func AdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isAdmin, _ := c.Get(string(AdminKey)).(bool); !isAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin only")
			}
			return next(c)
		}
	}
}

// extractTokenFromHeader извлекает токен из заголовка Authorization.
func extractTokenFromHeader(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	// Проверка формата "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}

	return ""
}

// extractTokenFromCookie извлекает токен из cookie.
func extractTokenFromCookie(c echo.Context) string {
	cookie, err := c.Cookie("Authorization")
	if err != nil {
		return ""
	}
	return cookie.Value
}

// GetUserIDFromContext извлекает ID пользователя из контекста.
func GetUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(string(UserIDKey)).(uuid.UUID)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	return userID, nil
}

// GetIdentityFromContext собирает текущего пользователя из контекста.
func GetIdentityFromContext(c echo.Context) (models.Identity, error) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		return models.Identity{}, err
	}
	email, _ := c.Get(string(UserEmailKey)).(string)
	name, _ := c.Get(string(UserNameKey)).(string)
	return models.Identity{UserID: userID, Email: email, Name: name}, nil
}
