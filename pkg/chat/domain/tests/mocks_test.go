package tests

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"marketplace/pkg/chat/domain/model"
)

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var errStoreDown = errors.New("store unavailable")

// mockCatalog is an in-memory CatalogReader mirroring the store's query
// contract: conjunctive substring matching, stock filters, optional
// failure injection.
type mockCatalog struct {
	listings []model.Listing
	failing  bool
	queries  int
}

func (m *mockCatalog) SearchActive(_ context.Context, keywords []string, q model.CatalogQuery) ([]model.Listing, error) {
	m.queries++
	if m.failing {
		return nil, errStoreDown
	}

	var matched []model.Listing
	for _, listing := range m.listings {
		if !q.IncludeOutOfStock && listing.Stock == 0 {
			continue
		}
		if q.CategoryFilter != "" &&
			!strings.Contains(strings.ToLower(listing.Category), strings.ToLower(q.CategoryFilter)) {
			continue
		}
		if q.MinPriceCents != nil && listing.PriceCents < *q.MinPriceCents {
			continue
		}
		if q.MaxPriceCents != nil && listing.PriceCents > *q.MaxPriceCents {
			continue
		}
		if !matchesAllKeywords(listing, keywords) {
			continue
		}
		matched = append(matched, listing)
		if q.FetchLimit > 0 && len(matched) == q.FetchLimit {
			break
		}
	}
	return matched, nil
}

func matchesAllKeywords(listing model.Listing, keywords []string) bool {
	title := strings.ToLower(listing.Title)
	description := strings.ToLower(listing.Description)
	category := strings.ToLower(listing.Category)
	for _, keyword := range keywords {
		kw := strings.ToLower(keyword)
		if !strings.Contains(title, kw) && !strings.Contains(description, kw) && !strings.Contains(category, kw) {
			return false
		}
	}
	return true
}

func (m *mockCatalog) ProductsByCategory(_ context.Context, category string, limit int) ([]model.Listing, error) {
	if m.failing {
		return nil, errStoreDown
	}
	var matched []model.Listing
	for _, listing := range m.listings {
		if listing.Stock == 0 {
			continue
		}
		if !strings.Contains(strings.ToLower(listing.Category), strings.ToLower(category)) {
			continue
		}
		matched = append(matched, listing)
		if len(matched) == limit {
			break
		}
	}
	return matched, nil
}

func (m *mockCatalog) AvailableCategories(_ context.Context) ([]string, error) {
	if m.failing {
		return nil, errStoreDown
	}
	seen := map[string]struct{}{}
	var categories []string
	for _, listing := range m.listings {
		if listing.Stock == 0 || listing.Category == "" {
			continue
		}
		if _, dup := seen[listing.Category]; dup {
			continue
		}
		seen[listing.Category] = struct{}{}
		categories = append(categories, listing.Category)
	}
	return categories, nil
}

// mockSender records outbound attempts and can fail the first N sends.
type mockSender struct {
	sent      []sentMessage
	failFirst int
}

type sentMessage struct {
	To   string
	Text string
}

func (m *mockSender) Send(_ context.Context, toPhone, text string) model.SendResult {
	m.sent = append(m.sent, sentMessage{To: toPhone, Text: text})
	if len(m.sent) <= m.failFirst {
		return model.SendResult{Error: "provider unavailable"}
	}
	return model.SendResult{Success: true, MessageID: "msg-1"}
}
