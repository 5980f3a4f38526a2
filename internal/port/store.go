package port

import (
	"context"

	"warehousesvc/internal/core/domain"
)

// ProductStore is the authoritative record of products and their stock.
type ProductStore interface {
	// BeginTx opens an atomic unit of work.
	BeginTx(ctx context.Context) (ProductTx, error)

	// ListByCategory returns all products whose category matches
	// case-insensitively, ordered by id.
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
}

// ProductTx is a single unit of work against the store. All reads and writes
// inside it succeed or fail atomically.
type ProductTx interface {
	// GetForUpdate reads a product and holds an exclusive row lock until the
	// transaction ends. Returns nil when the row does not exist.
	GetForUpdate(ctx context.Context, id int64) (*domain.Product, error)

	// Save buffers the product write; it becomes visible only after Commit.
	Save(ctx context.Context, p domain.Product) error

	Commit() error

	// Rollback releases the unit of work. Calling it after Commit is a no-op,
	// so callers may defer it.
	Rollback() error
}
