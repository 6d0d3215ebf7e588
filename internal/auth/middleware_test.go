package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestJWTMiddleware(t *testing.T) {
	secret := "test-secret"
	user := &models.User{
		ID:    uuid.New(),
		Email: "test@example.com",
		Name:  "테스트",
	}

	validToken, _ := GenerateToken(user, secret, time.Hour)
	expiredToken, _ := GenerateToken(user, secret, -time.Hour)

	tests := []struct {
		name           string
		token          string
		tokenLocation  string // "header" or "cookie"
		expectedStatus int
	}{
		{name: "valid token in header", token: validToken, tokenLocation: "header", expectedStatus: http.StatusOK},
		{name: "valid token in cookie", token: validToken, tokenLocation: "cookie", expectedStatus: http.StatusOK},
		{name: "missing token", expectedStatus: http.StatusUnauthorized},
		{name: "invalid token", token: "invalid.token.here", tokenLocation: "header", expectedStatus: http.StatusUnauthorized},
		{name: "expired token", token: expiredToken, tokenLocation: "header", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			switch tt.tokenLocation {
			case "header":
				req.Header.Set("Authorization", "Bearer "+tt.token)
			case "cookie":
				req.AddCookie(&http.Cookie{Name: "Authorization", Value: tt.token})
			}

			var identity models.Identity
			h := JWTMiddleware(secret)(func(c echo.Context) error {
				var err error
				identity, err = GetIdentityFromContext(c)
				if err != nil {
					return err
				}
				return c.String(http.StatusOK, "success")
			})

			err := h(c)

			if tt.expectedStatus == http.StatusOK {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				if identity.UserID != user.ID || identity.Email != user.Email || identity.Name != user.Name {
					t.Errorf("identity mismatch: %+v", identity)
				}
				return
			}

			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if he, ok := err.(*echo.HTTPError); ok && he.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, he.Code)
			}
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		setAdmin  any
		wantError bool
	}{
		{name: "admin", setAdmin: true, wantError: false},
		{name: "not admin", setAdmin: false, wantError: true},
		{name: "missing flag", setAdmin: nil, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			if tt.setAdmin != nil {
				c.Set(string(AdminKey), tt.setAdmin)
			}

			err := AdminMiddleware()(func(c echo.Context) error { return nil })(c)
			if tt.wantError {
				he, ok := err.(*echo.HTTPError)
				if !ok || he.Code != http.StatusForbidden {
					t.Fatalf("expected 403, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestGetUserIDFromContext(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	if _, err := GetUserIDFromContext(c); err == nil {
		t.Error("expected error for empty context")
	}

	c.Set(string(UserIDKey), "not-a-uuid")
	if _, err := GetUserIDFromContext(c); err == nil {
		t.Error("expected error for wrong type")
	}

	id := uuid.New()
	c.Set(string(UserIDKey), id)
	got, err := GetUserIDFromContext(c)
	if err != nil || got != id {
		t.Errorf("GetUserIDFromContext() = %v, %v; want %v", got, err, id)
	}
}
