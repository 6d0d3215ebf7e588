package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/services"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// MockUserService - мок для тестирования handlers
type MockUserService struct {
	RegisterFunc func(ctx context.Context, req models.RegisterRequest) (*models.User, string, error)
	LoginFunc    func(ctx context.Context, email, password string) (*models.User, string, error)
}

func (m *MockUserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return nil, "", nil
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, "", nil
}

// assertStatus проверяет код ответа: успешные ответы пишутся в рекордер,
// ошибки возвращаются как *echo.HTTPError.
func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, err error, want int) {
	t.Helper()
	if want < 400 {
		if err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
		if rec.Code != want {
			t.Errorf("Expected status %d, got %d", want, rec.Code)
		}
		return
	}
	if err == nil {
		if rec.Code != want {
			t.Errorf("Expected status %d, got %d", want, rec.Code)
		}
		return
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("Expected *echo.HTTPError, got %T", err)
	}
	if he.Code != want {
		t.Errorf("Expected status %d, got %d", want, he.Code)
	}
}

func hasAuthCookie(rec *httptest.ResponseRecorder) bool {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "Authorization" && cookie.Value != "" {
			return true
		}
	}
	return false
}

func TestUserHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		mockService    *MockUserService
		expectedStatus int
		checkCookie    bool
	}{
		{
			name:        "successful registration",
			requestBody: `{"email":"test@example.com","password":"password123","name":"홍길동"}`,
			mockService: &MockUserService{
				RegisterFunc: func(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
					return &models.User{ID: uuid.New(), Email: req.Email, Name: req.Name}, "test-token", nil
				},
			},
			expectedStatus: http.StatusOK,
			checkCookie:    true,
		},
		{
			name:           "invalid JSON",
			requestBody:    `{"email":"test@example.com"`,
			mockService:    &MockUserService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "empty credentials",
			requestBody: `{"email":"","password":""}`,
			mockService: &MockUserService{
				RegisterFunc: func(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
					return nil, "", services.ErrEmptyCredentials
				},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "email already exists",
			requestBody: `{"email":"existing@example.com","password":"password123"}`,
			mockService: &MockUserService{
				RegisterFunc: func(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
					return nil, "", storage.ErrEmailExists
				},
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:        "internal error",
			requestBody: `{"email":"test@example.com","password":"password123"}`,
			mockService: &MockUserService{
				RegisterFunc: func(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
					return nil, "", errors.New("database error")
				},
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader(tt.requestBody))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := NewUserHandler(tt.mockService)
			err := handler.Register(c)

			assertStatus(t, rec, err, tt.expectedStatus)
			if tt.checkCookie {
				if !hasAuthCookie(rec) {
					t.Error("Authorization cookie not set")
				}
				if !strings.Contains(rec.Body.String(), `"role":"user"`) {
					t.Errorf("unexpected body %s", rec.Body.String())
				}
			}
		})
	}
}

func TestUserHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		mockService    *MockUserService
		expectedStatus int
		checkCookie    bool
	}{
		{
			name:        "successful login",
			requestBody: `{"email":"admin@example.com","password":"password123"}`,
			mockService: &MockUserService{
				LoginFunc: func(ctx context.Context, email, password string) (*models.User, string, error) {
					return &models.User{ID: uuid.New(), Email: email, IsAdmin: true}, "test-token", nil
				},
			},
			expectedStatus: http.StatusOK,
			checkCookie:    true,
		},
		{
			name:           "invalid JSON",
			requestBody:    `{"email":"test@example.com"`,
			mockService:    &MockUserService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "invalid credentials",
			requestBody: `{"email":"test@example.com","password":"wrongpassword"}`,
			mockService: &MockUserService{
				LoginFunc: func(ctx context.Context, email, password string) (*models.User, string, error) {
					return nil, "", services.ErrInvalidCredentials
				},
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:        "internal error",
			requestBody: `{"email":"test@example.com","password":"password123"}`,
			mockService: &MockUserService{
				LoginFunc: func(ctx context.Context, email, password string) (*models.User, string, error) {
					return nil, "", errors.New("database error")
				},
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(tt.requestBody))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := NewUserHandler(tt.mockService)
			err := handler.Login(c)

			assertStatus(t, rec, err, tt.expectedStatus)
			if tt.checkCookie {
				if !hasAuthCookie(rec) {
					t.Error("Authorization cookie not set")
				}
				if !strings.Contains(rec.Body.String(), `"role":"admin"`) {
					t.Errorf("unexpected body %s", rec.Body.String())
				}
			}
		})
	}
}

func TestSetAuthToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	token := "test-token-value"
	setAuthToken(c, token)

	var authCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "Authorization" {
			authCookie = cookie
			break
		}
	}

	if authCookie == nil {
		t.Fatal("Authorization cookie not set")
	}
	if authCookie.Value != token {
		t.Errorf("Cookie value = %v, want %v", authCookie.Value, token)
	}
	if !authCookie.HttpOnly {
		t.Error("Cookie should be HttpOnly")
	}
	if got := rec.Header().Get("Authorization"); got != "Bearer "+token {
		t.Errorf("Authorization header = %v, want Bearer %v", got, token)
	}
}
