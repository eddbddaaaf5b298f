package service

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"marketplace/pkg/chat/domain/model"
)

// SearchOptions controls one search invocation. A zero Limit falls back
// to DefaultSearchLimit.
type SearchOptions struct {
	Limit             int
	IncludeOutOfStock bool
	CategoryFilter    string
	MinPriceCents     *int64
	MaxPriceCents     *int64
}

const DefaultSearchLimit = 5

// SearchEngine ranks catalog candidates for the chat pipeline. It is
// best-effort: data-layer failures degrade to an empty result and are
// only logged, so a broken store can never break a conversation.
type SearchEngine struct {
	catalog model.CatalogReader
	logger  logrus.FieldLogger
}

func NewSearchEngine(catalog model.CatalogReader, logger logrus.FieldLogger) *SearchEngine {
	return &SearchEngine{catalog: catalog, logger: logger}
}

// Search returns up to opts.Limit results ranked by relevance.
// An empty keyword list issues no query at all.
func (e *SearchEngine) Search(ctx context.Context, keywords []string, opts SearchOptions) []model.SearchResult {
	if len(keywords) == 0 {
		return nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	// Over-fetch so ranking has room to reorder what the store returned
	// by stock and recency.
	listings, err := e.catalog.SearchActive(ctx, keywords, model.CatalogQuery{
		IncludeOutOfStock: opts.IncludeOutOfStock,
		CategoryFilter:    opts.CategoryFilter,
		MinPriceCents:     opts.MinPriceCents,
		MaxPriceCents:     opts.MaxPriceCents,
		FetchLimit:        limit * 2,
	})
	if err != nil {
		e.logger.WithError(err).WithField("keywords", truncateKeywords(keywords)).
			Error("product search failed")
		return nil
	}

	results := make([]model.SearchResult, 0, len(listings))
	for _, listing := range listings {
		results = append(results, model.SearchResult{
			Listing:        listing,
			RelevanceScore: relevanceScore(listing, keywords),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if len(results) > limit {
		results = results[:limit]
	}

	e.logger.WithFields(logrus.Fields{
		"keywords":    truncateKeywords(keywords),
		"resultCount": len(results),
	}).Info("product search completed")
	return results
}

// relevanceScore sums keyword-position weights and stock bonuses.
// Title matches weigh most, with an extra bonus for title prefixes.
func relevanceScore(listing model.Listing, keywords []string) int {
	title := strings.ToLower(listing.Title)
	description := strings.ToLower(listing.Description)
	category := strings.ToLower(listing.Category)

	score := 0
	for _, keyword := range keywords {
		kw := strings.ToLower(keyword)
		if strings.Contains(title, kw) {
			score += 10
			if strings.HasPrefix(title, kw) {
				score += 5
			}
		}
		if description != "" && strings.Contains(description, kw) {
			score += 5
		}
		if category != "" && strings.Contains(category, kw) {
			score += 3
		}
	}

	if listing.Stock > 0 {
		score += 2
	}
	if listing.Stock > 10 {
		score++
	}
	return score
}

// truncateKeywords keeps log lines short; three keywords identify the
// query well enough.
func truncateKeywords(keywords []string) []string {
	if len(keywords) > 3 {
		return keywords[:3]
	}
	return keywords
}
