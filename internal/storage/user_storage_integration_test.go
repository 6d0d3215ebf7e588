//go:build integration
// +build integration

package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
)

func TestPostgresUserStorage_Create(t *testing.T) {
	pool := getTestDBPool(t)
	storage := NewPostgresUserStorage(pool)
	ctx := context.Background()

	t.Run("successful create", func(t *testing.T) {
		user := &models.User{
			ID:           uuid.New(),
			Email:        "test_" + uuid.New().String() + "@example.com",
			Name:         "홍길동",
			PasswordHash: "hashed_password",
			IsAdmin:      true,
		}

		if err := storage.Create(ctx, user); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		retrieved, err := storage.GetByEmail(ctx, user.Email)
		if err != nil {
			t.Fatalf("GetByEmail() error = %v", err)
		}
		if retrieved.ID != user.ID || retrieved.Name != user.Name || !retrieved.IsAdmin {
			t.Errorf("retrieved = %+v", retrieved)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		email := "duplicate_" + uuid.New().String() + "@example.com"

		if err := storage.Create(ctx, &models.User{ID: uuid.New(), Email: email, Name: "a", PasswordHash: "hash1"}); err != nil {
			t.Fatalf("First Create() error = %v", err)
		}

		err := storage.Create(ctx, &models.User{ID: uuid.New(), Email: email, Name: "b", PasswordHash: "hash2"})
		if !errors.Is(err, ErrEmailExists) {
			t.Errorf("Expected ErrEmailExists, got %v", err)
		}
	})
}

func TestPostgresUserStorage_Get(t *testing.T) {
	pool := getTestDBPool(t)
	storage := NewPostgresUserStorage(pool)
	ctx := context.Background()

	user := createTestUser(t, pool)

	byID, err := storage.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Email != user.Email {
		t.Errorf("Email = %v, want %v", byID.Email, user.Email)
	}

	if _, err := storage.GetByID(ctx, uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
	if _, err := storage.GetByEmail(ctx, "missing_"+uuid.NewString()+"@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}
