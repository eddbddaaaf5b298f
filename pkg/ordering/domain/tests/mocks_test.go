package tests

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	catalogmodel "marketplace/pkg/catalog/domain/model"
	"marketplace/pkg/common/domain"
	"marketplace/pkg/ordering/domain/model"
)

// orderingStore is an in-memory stand-in for the MySQL-backed ordering
// repository: it serves all five checkout dependencies and applies the
// same commit-time stock rule.
type orderingStore struct {
	users     map[uuid.UUID]bool
	products  map[uuid.UUID]*model.CatalogProduct
	orders    map[uuid.UUID]*model.Order
	entries   []model.CoinLedgerEntry
	commitErr error
}

func newOrderingStore() *orderingStore {
	return &orderingStore{
		users:    map[uuid.UUID]bool{},
		products: map[uuid.UUID]*model.CatalogProduct{},
		orders:   map[uuid.UUID]*model.Order{},
	}
}

func (s *orderingStore) addUser() uuid.UUID {
	id := uuid.New()
	s.users[id] = true
	return id
}

func (s *orderingStore) addProduct(title string, priceCents int64, stock int, active bool) uuid.UUID {
	id := uuid.New()
	s.products[id] = &model.CatalogProduct{
		ID: id, Title: title, PriceCents: priceCents, Stock: stock, Active: active,
	}
	return id
}

func (s *orderingStore) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (s *orderingStore) Find(_ context.Context, id uuid.UUID) (*model.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderingStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.Order, error) {
	var orders []*model.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (s *orderingStore) CountByUserInStatuses(_ context.Context, userID uuid.UUID, statuses []model.OrderStatus) (int, error) {
	count := 0
	for _, order := range s.orders {
		if order.UserID != userID {
			continue
		}
		for _, status := range statuses {
			if order.Status == status {
				count++
				break
			}
		}
	}
	return count, nil
}

func (s *orderingStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) error {
	order, ok := s.orders[id]
	if !ok {
		return model.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (s *orderingStore) EntriesByUser(_ context.Context, userID uuid.UUID) ([]model.CoinLedgerEntry, error) {
	var entries []model.CoinLedgerEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].UserID == userID {
			entries = append(entries, s.entries[i])
		}
	}
	return entries, nil
}

func (s *orderingStore) HasEntrySince(_ context.Context, userID uuid.UUID, reason string, since time.Time) (bool, error) {
	for _, entry := range s.entries {
		if entry.UserID == userID && entry.Reason == reason && !entry.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *orderingStore) UserExists(_ context.Context, id uuid.UUID) (bool, error) {
	return s.users[id], nil
}

func (s *orderingStore) FindProduct(_ context.Context, id uuid.UUID) (*model.CatalogProduct, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, catalogmodel.ErrProductNotFound
	}
	return product, nil
}

// Commit mirrors the transactional store: either every decrement
// succeeds and everything persists, or nothing does.
func (s *orderingStore) Commit(_ context.Context, order *model.Order, grants []model.CoinLedgerEntry) error {
	if s.commitErr != nil {
		return s.commitErr
	}

	for _, item := range order.Items {
		product := s.products[item.ProductID]
		if product == nil || !product.Active || product.Stock < item.Qty {
			return fmt.Errorf("product %s: %w", item.ProductID, catalogmodel.ErrInsufficientStock)
		}
	}
	for _, item := range order.Items {
		s.products[item.ProductID].Stock -= item.Qty
	}
	s.orders[order.ID] = order
	s.entries = append(s.entries, grants...)
	return nil
}

// fakeClock is a settable Clock for exercising the daily-bonus window.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type recordingDispatcher struct {
	events []domain.Event
}

func (d *recordingDispatcher) Dispatch(event domain.Event) error {
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) typesSeen() []string {
	types := make([]string, 0, len(d.events))
	for _, event := range d.events {
		types = append(types, event.Type())
	}
	return types
}
