package port

import (
	"context"
	"time"
)

// ProductCache is a disposable read model subordinate to the store. Entries
// are replaced wholesale or deleted, never mutated in place.
type ProductCache interface {
	// Get returns the cached value, or nil on a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}
