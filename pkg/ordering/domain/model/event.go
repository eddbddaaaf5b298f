package model

import "github.com/google/uuid"

type OrderCreated struct {
	OrderID      uuid.UUID
	UserID       uuid.UUID
	TotalCents   int64
	CoinsGranted int
	ItemCount    int
}

func (e OrderCreated) Type() string { return "OrderCreated" }

type OrderStatusChanged struct {
	OrderID   uuid.UUID
	OldStatus OrderStatus
	NewStatus OrderStatus
}

func (e OrderStatusChanged) Type() string { return "OrderStatusChanged" }

type CoinsGranted struct {
	UserID  uuid.UUID
	Coins   int
	Reason  string
	OrderID uuid.UUID
}

func (e CoinsGranted) Type() string { return "CoinsGranted" }
