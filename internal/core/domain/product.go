package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the authoritative inventory record. Stock is mutated only inside
// a store transaction that holds the row lock.
type Product struct {
	ID        int64
	Name      string
	Category  string
	Price     decimal.Decimal
	Stock     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductSnapshot is a point-in-time projection used for category listings
// and cache entries. It may lag the store by up to the cache TTL.
type ProductSnapshot struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

// Snapshot projects the product for listing and caching.
func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		Stock:    p.Stock,
	}
}

// FailureReason classifies why a purchase did not complete.
type FailureReason string

const (
	FailureNone              FailureReason = ""
	FailureInvalidInput      FailureReason = "invalid_input"
	FailureNotFound          FailureReason = "not_found"
	FailureInsufficientStock FailureReason = "insufficient_stock"
	FailureInternal          FailureReason = "internal"
)

// PurchaseResult is the terminal outcome of a single purchase request.
// NewStock is meaningful only when Success is true.
type PurchaseResult struct {
	Success  bool
	NewStock int
	Message  string
	Reason   FailureReason
}

const categoryKeyPrefix = "products:"

// CategoryCacheKey derives the cache key for a category listing. Categories
// group case-insensitively, so the key is always lower-cased.
func CategoryCacheKey(category string) string {
	return categoryKeyPrefix + strings.ToLower(category)
}
