package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	catalogmodel "marketplace/pkg/catalog/domain/model"
	"marketplace/pkg/common/domain"
	"marketplace/pkg/ordering/domain/model"
)

var (
	ErrEmptyCart       = errors.New("cannot check out an empty cart")
	ErrInvalidQuantity = errors.New("item quantity must be a positive number")
)

const (
	firstPurchaseReason = "first_purchase"
	dailyBonusReason    = "daily_bonus"

	firstPurchaseCoins = 100
	dailyBonusCoins    = 50
)

// CartItem is one requested line of a checkout.
type CartItem struct {
	ProductID uuid.UUID
	Qty       int
}

type CheckoutRequest struct {
	UserID  uuid.UUID
	Items   []CartItem
	Payment model.PaymentMethod
	Address string
	Note    string
}

// Receipt is the caller-facing projection of a committed order.
type Receipt struct {
	OrderID      uuid.UUID
	TotalCents   int64
	CoinsGranted int
	Status       model.OrderStatus
	Items        []model.Item
}

// Clock abstracts time so the daily-bonus window is testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the production clock.
var SystemClock Clock = systemClock{}

type CheckoutService interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*Receipt, error)
	ListOrders(ctx context.Context, userID uuid.UUID, status model.OrderStatus) ([]*model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, target model.OrderStatus) error
}

func NewCheckoutService(
	users model.UserDirectory,
	products model.ProductReader,
	orders model.OrderRepository,
	ledger model.CoinLedger,
	store model.CheckoutStore,
	dispatcher domain.EventDispatcher,
	clock Clock,
) CheckoutService {
	if clock == nil {
		clock = SystemClock
	}
	return &checkoutService{
		users:      users,
		products:   products,
		orders:     orders,
		ledger:     ledger,
		store:      store,
		dispatcher: dispatcher,
		clock:      clock,
	}
}

type checkoutService struct {
	users      model.UserDirectory
	products   model.ProductReader
	orders     model.OrderRepository
	ledger     model.CoinLedger
	store      model.CheckoutStore
	dispatcher domain.EventDispatcher
	clock      Clock
}

// Checkout validates the cart against fresh catalog state, computes
// loyalty grants and commits everything atomically. Any validation
// failure aborts before a single write happens; any commit failure
// rolls the whole unit back.
func (s *checkoutService) Checkout(ctx context.Context, req CheckoutRequest) (*Receipt, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if _, err := model.ParsePaymentMethod(string(req.Payment)); err != nil {
		return nil, err
	}

	exists, err := s.users.UserExists(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrUserNotFound
	}

	var totalCents int64
	items := make([]model.Item, 0, len(req.Items))
	for _, line := range req.Items {
		if line.Qty <= 0 {
			return nil, ErrInvalidQuantity
		}

		product, err := s.products.FindProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.Active {
			return nil, fmt.Errorf("product %q: %w", product.Title, catalogmodel.ErrProductInactive)
		}
		if product.Stock < line.Qty {
			return nil, fmt.Errorf("product %q has %d in stock, %d requested: %w",
				product.Title, product.Stock, line.Qty, catalogmodel.ErrInsufficientStock)
		}

		itemID, err := s.orders.NextID()
		if err != nil {
			return nil, err
		}
		// Unit price and title are snapshotted here; later catalog
		// edits never touch the order.
		items = append(items, model.Item{
			ID:         itemID,
			ProductID:  product.ID,
			Title:      product.Title,
			Qty:        line.Qty,
			PriceCents: product.PriceCents,
		})
		totalCents += product.PriceCents * int64(line.Qty)
	}

	orderID, err := s.orders.NextID()
	if err != nil {
		return nil, err
	}

	grants, err := s.loyaltyGrants(ctx, req.UserID, orderID)
	if err != nil {
		return nil, err
	}
	coinsGranted := 0
	for _, grant := range grants {
		coinsGranted += grant.Coins
	}

	now := s.clock.Now().UTC()
	order := &model.Order{
		ID:           orderID,
		UserID:       req.UserID,
		Status:       model.StatusPending,
		Payment:      req.Payment,
		TotalCents:   totalCents,
		CoinsGranted: coinsGranted,
		Address:      req.Address,
		Note:         req.Note,
		Items:        items,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Commit(ctx, order, grants); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.OrderCreated{
		OrderID:      orderID,
		UserID:       req.UserID,
		TotalCents:   totalCents,
		CoinsGranted: coinsGranted,
		ItemCount:    len(items),
	})
	for _, grant := range grants {
		_ = s.dispatcher.Dispatch(model.CoinsGranted{
			UserID:  req.UserID,
			Coins:   grant.Coins,
			Reason:  grant.Reason,
			OrderID: orderID,
		})
	}

	return &Receipt{
		OrderID:      orderID,
		TotalCents:   totalCents,
		CoinsGranted: coinsGranted,
		Status:       order.Status,
		Items:        items,
	}, nil
}

// loyaltyGrants evaluates both bonuses with read-only checks. They are
// independent and additive: 100 coins once per user on their first
// purchase, 50 coins once per calendar day. The ledger guard on the
// first-purchase bonus keeps it exactly-once even while the qualifying
// order is still PENDING.
func (s *checkoutService) loyaltyGrants(ctx context.Context, userID, orderID uuid.UUID) ([]model.CoinLedgerEntry, error) {
	var grants []model.CoinLedgerEntry
	now := s.clock.Now()

	priorPaid, err := s.orders.CountByUserInStatuses(ctx, userID,
		[]model.OrderStatus{model.StatusPaid, model.StatusDelivered})
	if err != nil {
		return nil, err
	}
	if priorPaid == 0 {
		granted, err := s.ledger.HasEntrySince(ctx, userID, firstPurchaseReason, time.Time{})
		if err != nil {
			return nil, err
		}
		if !granted {
			grants = append(grants, s.newGrant(userID, orderID, firstPurchaseCoins, firstPurchaseReason, now))
		}
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	hadDaily, err := s.ledger.HasEntrySince(ctx, userID, dailyBonusReason, midnight)
	if err != nil {
		return nil, err
	}
	if !hadDaily {
		grants = append(grants, s.newGrant(userID, orderID, dailyBonusCoins, dailyBonusReason, now))
	}

	return grants, nil
}

func (s *checkoutService) newGrant(userID, orderID uuid.UUID, coins int, reason string, now time.Time) model.CoinLedgerEntry {
	id := uuid.New()
	linked := orderID
	return model.CoinLedgerEntry{
		ID:        id,
		UserID:    userID,
		Coins:     coins,
		Reason:    reason,
		OrderID:   &linked,
		CreatedAt: now.UTC(),
	}
}

// ListOrders returns a buyer's orders, newest first, optionally narrowed
// to a single status. An empty status means no filter.
func (s *checkoutService) ListOrders(ctx context.Context, userID uuid.UUID, status model.OrderStatus) ([]*model.Order, error) {
	if status != "" {
		if _, err := model.ParseOrderStatus(string(status)); err != nil {
			return nil, err
		}
	}

	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return orders, nil
	}

	filtered := make([]*model.Order, 0, len(orders))
	for _, order := range orders {
		if order.Status == status {
			filtered = append(filtered, order)
		}
	}
	return filtered, nil
}

// UpdateOrderStatus applies one explicit, validated status transition.
// There are no automatic transitions anywhere else.
func (s *checkoutService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, target model.OrderStatus) error {
	if _, err := model.ParseOrderStatus(string(target)); err != nil {
		return err
	}

	order, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.Status.CanTransitionTo(target) {
		return fmt.Errorf("%s -> %s: %w", order.Status, target, model.ErrInvalidTransition)
	}

	if err := s.orders.UpdateStatus(ctx, orderID, target); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.OrderStatusChanged{
		OrderID:   orderID,
		OldStatus: order.Status,
		NewStatus: target,
	})
	return nil
}
