package model

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInactive   = errors.New("product is not available")
	ErrInsufficientStock = errors.New("insufficient stock quantity")
	ErrSellerNotFound    = errors.New("seller not found")
)

// Product is a single marketplace listing owned by a seller.
// Stock is never negative; a soft-deleted product keeps its rows with
// Active=false so order history stays intact.
type Product struct {
	ID          uuid.UUID
	SellerID    uuid.UUID
	Title       string
	Description string
	Category    string
	Country     string
	ImageURL    string
	PriceCents  int64
	Stock       int
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProductRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Find(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
}

// ListFilter narrows product listings; zero values mean "no filter".
type ListFilter struct {
	Query      string
	Category   string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// SellerDirectory answers whether a seller identity exists. Seller
// management itself lives outside the catalog.
type SellerDirectory interface {
	SellerExists(ctx context.Context, id uuid.UUID) (bool, error)
}
