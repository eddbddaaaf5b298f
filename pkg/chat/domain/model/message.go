package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Intent is the classified purpose of an inbound chat message.
type Intent string

const (
	IntentPrice         Intent = "PRICE"
	IntentStock         Intent = "STOCK"
	IntentPayment       Intent = "PAYMENT"
	IntentDelivery      Intent = "DELIVERY"
	IntentMenu          Intent = "MENU"
	IntentHelp          Intent = "HELP"
	IntentProductSearch Intent = "PRODUCT_SEARCH"
	IntentGreeting      Intent = "GREETING"
	IntentUnknown       Intent = "UNKNOWN"
)

// ParsedMessage is the ephemeral result of running one inbound text
// through the keyword extractor and intent classifier. It is never
// persisted; each message is parsed independently of any prior turn.
type ParsedMessage struct {
	OriginalText   string
	NormalizedText string
	Keywords       []string
	Intent         Intent
	Confidence     float64
}

// InboundMessage is a provider-normalized WhatsApp message.
type InboundMessage struct {
	From      string
	Body      string
	Timestamp time.Time
}

// SendResult reports the outcome of one outbound send attempt.
// Transports return it instead of an error so the orchestrator can
// inspect failures without unwinding.
type SendResult struct {
	Success   bool
	MessageID string
	Error     string
}

// OutboundSender delivers a reply to a phone number. Implementations
// must never panic on provider failure; they report it in the result.
type OutboundSender interface {
	Send(ctx context.Context, toPhone, text string) SendResult
}

// Listing is a catalog projection used by the chat pipeline: product
// fields plus the seller's store details needed to render a reply.
type Listing struct {
	ID          uuid.UUID
	Title       string
	Description string
	Category    string
	ImageURL    string
	PriceCents  int64
	Stock       int
	StoreName   string
	SellerName  string
	SellerPhone string
	CreatedAt   time.Time
}

// SearchResult is a Listing annotated with its relevance score. It only
// exists to rank candidates and is discarded after rendering.
type SearchResult struct {
	Listing
	RelevanceScore int
}

// CatalogQuery narrows a catalog search.
type CatalogQuery struct {
	IncludeOutOfStock bool
	CategoryFilter    string
	MinPriceCents     *int64
	MaxPriceCents     *int64
	FetchLimit        int
}

// CatalogReader is the chat pipeline's read-only view of the catalog
// store. SearchActive must return active products matching every keyword
// in at least one of title, description or category, ordered by stock
// descending then recency descending.
type CatalogReader interface {
	SearchActive(ctx context.Context, keywords []string, query CatalogQuery) ([]Listing, error)
	ProductsByCategory(ctx context.Context, category string, limit int) ([]Listing, error)
	AvailableCategories(ctx context.Context) ([]string, error)
}
