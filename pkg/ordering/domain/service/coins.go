package service

import (
	"context"

	"github.com/google/uuid"

	"marketplace/pkg/ordering/domain/model"
)

const recentEntriesLimit = 10

// CoinBalance is a user's current balance with their most recent ledger
// history attached.
type CoinBalance struct {
	UserID  uuid.UUID
	Balance int
	Recent  []model.CoinLedgerEntry
}

type CoinService interface {
	Balance(ctx context.Context, userID uuid.UUID) (*CoinBalance, error)
}

func NewCoinService(users model.UserDirectory, ledger model.CoinLedger) CoinService {
	return &coinService{users: users, ledger: ledger}
}

type coinService struct {
	users  model.UserDirectory
	ledger model.CoinLedger
}

// Balance sums every ledger entry for the user. The ledger is
// append-only, so the sum is the single source of truth.
func (s *coinService) Balance(ctx context.Context, userID uuid.UUID) (*CoinBalance, error) {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrUserNotFound
	}

	entries, err := s.ledger.EntriesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	balance := 0
	for _, entry := range entries {
		balance += entry.Coins
	}

	recent := entries
	if len(recent) > recentEntriesLimit {
		recent = recent[:recentEntriesLimit]
	}

	return &CoinBalance{UserID: userID, Balance: balance, Recent: recent}, nil
}
