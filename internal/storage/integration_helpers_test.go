//go:build integration
// +build integration

package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/agamariel/storefront/internal/migrations"
	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
)

func getTestDBPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURI := os.Getenv("DATABASE_URI")
	if dbURI == "" {
		t.Skip("DATABASE_URI not set, skipping integration tests")
	}

	sqlDB, err := sql.Open("pgx", dbURI)
	if err != nil {
		t.Fatalf("Unable to open database: %v", err)
	}
	defer sqlDB.Close()
	if err := migrations.Run(context.Background(), sqlDB); err != nil {
		t.Fatalf("Unable to migrate database: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), dbURI)
	if err != nil {
		t.Fatalf("Unable to connect to database: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

func createTestUser(t *testing.T, pool *pgxpool.Pool) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        "test_" + uuid.NewString() + "@example.com",
		Name:         "테스트",
		PasswordHash: "hashed_password",
	}
	if err := NewPostgresUserStorage(pool).Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createTestProduct(t *testing.T, pool *pgxpool.Pool, price int64) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:     uuid.New(),
		Name:   "린넨 셔츠",
		Price:  decimal.NewFromInt(price),
		Sizes:  []string{"S", "M"},
		Colors: []string{"white"},
		Stock:  10,
	}
	if err := NewPostgresProductStorage(pool).Create(context.Background(), p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}
