package model

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrUnknownPayment    = errors.New("unknown payment method")
	ErrInvalidTransition = errors.New("order status transition is not allowed")
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusDelivered OrderStatus = "DELIVERED"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusPaid, StatusCancelled, StatusDelivered:
		return OrderStatus(s), nil
	}
	return "", ErrUnknownStatus
}

// CanTransitionTo encodes the one-directional lifecycle: a PENDING order
// may become PAID, CANCELLED or DELIVERED; CANCELLED and DELIVERED are
// terminal; a PAID order may still be delivered or cancelled.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case StatusPending:
		return target == StatusPaid || target == StatusCancelled || target == StatusDelivered
	case StatusPaid:
		return target == StatusDelivered || target == StatusCancelled
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentTransfer:
		return PaymentMethod(s), nil
	}
	return "", ErrUnknownPayment
}

// Order is a committed purchase. TotalCents equals the sum of its items'
// snapshotted prices times quantities at creation time, regardless of
// later price changes on the underlying products.
type Order struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Status       OrderStatus
	Payment      PaymentMethod
	TotalCents   int64
	CoinsGranted int
	Address      string
	Note         string
	Items        []Item
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Item snapshots a product's unit price and title at order time, so the
// order survives later edits or deletion of the product.
type Item struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	Title      string
	Qty        int
	PriceCents int64
}

func (i Item) SubtotalCents() int64 {
	return i.PriceCents * int64(i.Qty)
}

// CoinLedgerEntry is one append-only loyalty grant. A user's balance is
// the sum of all their entries; entries are never updated or deleted.
type CoinLedgerEntry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Coins     int
	Reason    string
	OrderID   *uuid.UUID
	CreatedAt time.Time
}

type OrderRepository interface {
	NextID() (uuid.UUID, error)
	Find(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)
	CountByUserInStatuses(ctx context.Context, userID uuid.UUID, statuses []OrderStatus) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error
}

type CoinLedger interface {
	EntriesByUser(ctx context.Context, userID uuid.UUID) ([]CoinLedgerEntry, error)
	HasEntrySince(ctx context.Context, userID uuid.UUID, reason string, since time.Time) (bool, error)
}

// CheckoutStore commits an order, its stock decrements and its loyalty
// grants as one all-or-nothing unit. Implementations must re-validate
// stock at commit time and fail the whole commit with
// ErrInsufficientStock (from the catalog model) if any decrement would
// drive stock negative.
type CheckoutStore interface {
	Commit(ctx context.Context, order *Order, grants []CoinLedgerEntry) error
}

// UserDirectory answers whether a buyer exists; user management lives
// outside the ordering context.
type UserDirectory interface {
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ProductReader gives checkout a fresh view of the catalog.
type ProductReader interface {
	FindProduct(ctx context.Context, id uuid.UUID) (*CatalogProduct, error)
}

// CatalogProduct is the slice of product state checkout needs.
type CatalogProduct struct {
	ID         uuid.UUID
	Title      string
	PriceCents int64
	Stock      int
	Active     bool
}
