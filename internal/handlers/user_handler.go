package handlers

import (
	"errors"
	"net/http"

	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/services"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/labstack/echo/v4"
)

// UserHandler обрабатывает HTTP-запросы для работы с пользователями.
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler создаёт новый экземпляр UserHandler.
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// authResponse ответ на регистрацию и вход.
type authResponse struct {
	Token string               `json:"token"`
	User  *models.UserResponse `json:"user"`
}

// Register обрабатывает POST /api/user/register.
func (h *UserHandler) Register(c echo.Context) error {
	var req models.RegisterRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	user, token, err := h.userService.Register(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCredentials) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, storage.ErrEmailExists) {
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		}
		c.Logger().Errorf("failed to register user: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	setAuthToken(c, token)

	return c.JSON(http.StatusOK, authResponse{Token: token, User: user.ToResponse()})
}

// Login обрабатывает POST /api/user/login.
func (h *UserHandler) Login(c echo.Context) error {
	var req models.LoginRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	user, token, err := h.userService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCredentials) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, services.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		c.Logger().Errorf("failed to login user: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	setAuthToken(c, token)

	return c.JSON(http.StatusOK, authResponse{Token: token, User: user.ToResponse()})
}

// setAuthToken устанавливает токен в cookie и заголовок ответа.
func setAuthToken(c echo.Context, token string) {
	cookie := &http.Cookie{
		Name:     "Authorization",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   86400, // 24 часа
	}
	c.SetCookie(cookie)

	// Также устанавливаем в заголовок для удобства
	c.Response().Header().Set("Authorization", "Bearer "+token)
}
