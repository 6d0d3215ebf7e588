package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("product requires name and positive price")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// CatalogService каталог товаров и корзина покупателя.
type CatalogService interface {
	ListProducts(ctx context.Context, category string) ([]*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.Product, error)
	GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	AddToCart(ctx context.Context, userID uuid.UUID, req models.AddCartItemRequest) ([]models.CartItem, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// CatalogServiceImpl реализует CatalogService.
type CatalogServiceImpl struct {
	productStorage ProductStorage
	cartStorage    CartStorage
}

// NewCatalogService создаёт сервис каталога и корзины.
func NewCatalogService(productStorage ProductStorage, cartStorage CartStorage) *CatalogServiceImpl {
	return &CatalogServiceImpl{productStorage: productStorage, cartStorage: cartStorage}
}

func (s *CatalogServiceImpl) ListProducts(ctx context.Context, category string) ([]*models.Product, error) {
	products, err := s.productStorage.List(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []*models.Product{}
	}
	return products, nil
}

func (s *CatalogServiceImpl) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.productStorage.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// CreateProduct добавляет товар в каталог.
func (s *CatalogServiceImpl) CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Price <= 0 || req.Stock < 0 {
		return nil, ErrInvalidProduct
	}

	p := &models.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: req.Description,
		Price:       decimal.NewFromInt(req.Price),
		Category:    req.Category,
		Sizes:       nonNil(req.Sizes),
		Colors:      nonNil(req.Colors),
		Stock:       req.Stock,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.productStorage.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (s *CatalogServiceImpl) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	items, err := s.cartStorage.GetItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

// AddToCart кладёт товар в корзину и возвращает её новое содержимое.
// Размер и цвет обязательны и должны входить в варианты товара, если они у него заданы.
func (s *CatalogServiceImpl) AddToCart(ctx context.Context, userID uuid.UUID, req models.AddCartItemRequest) ([]models.CartItem, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	req.Size = strings.TrimSpace(req.Size)
	req.Color = strings.TrimSpace(req.Color)
	if req.Size == "" || req.Color == "" {
		return nil, &ValidationError{Err: ErrInvalidLineItem, Message: "size and color are required"}
	}

	p, err := s.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !offers(p.Sizes, req.Size) || !offers(p.Colors, req.Color) {
		return nil, &ValidationError{Err: ErrInvalidLineItem, Message: "unknown size or color"}
	}

	if err := s.cartStorage.AddItem(ctx, userID, req); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return s.GetCart(ctx, userID)
}

func (s *CatalogServiceImpl) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartStorage.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func offers(options []string, choice string) bool {
	if len(options) == 0 {
		return true
	}
	for _, o := range options {
		if o == choice {
			return true
		}
	}
	return false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
