package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"warehousesvc/internal/core/domain"
	"warehousesvc/internal/port"
)

const purchaseFailedMessage = "Purchase could not be completed"

// Config carries the tunable parts of the coordinator.
type Config struct {
	LowStockThreshold int
	CacheTTL          time.Duration
	TxTimeout         time.Duration
}

// InventoryService coordinates purchases against the store, keeps the read
// cache coherent after each mutation, and triggers low-stock alerts without
// coupling purchase success to the alert channel.
type InventoryService struct {
	store     port.ProductStore
	cache     port.ProductCache
	alerts    port.AlertPublisher
	logger    *zap.Logger
	threshold int
	cacheTTL  time.Duration
	txTimeout time.Duration
}

func NewInventoryService(store port.ProductStore, cache port.ProductCache, alerts port.AlertPublisher, logger *zap.Logger, cfg Config) *InventoryService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = 5 * time.Second
	}
	return &InventoryService{
		store:     store,
		cache:     cache,
		alerts:    alerts,
		logger:    logger,
		threshold: cfg.LowStockThreshold,
		cacheTTL:  cfg.CacheTTL,
		txTimeout: cfg.TxTimeout,
	}
}

func failure(reason domain.FailureReason, msg string) domain.PurchaseResult {
	return domain.PurchaseResult{Message: msg, Reason: reason}
}

// Purchase executes a single purchase end-to-end. Stock is checked and
// decremented under an exclusive row lock; concurrent purchases of the same
// product serialize on that lock. Cache invalidation and the low-stock alert
// run only after the transaction has committed and never affect the result.
func (s *InventoryService) Purchase(ctx context.Context, productID int64, quantity int) domain.PurchaseResult {
	if quantity <= 0 {
		return failure(domain.FailureInvalidInput, "Quantity must be greater than 0")
	}
	if productID <= 0 {
		return failure(domain.FailureInvalidInput, "Invalid ProductId")
	}

	product, res := s.deductStock(ctx, productID, quantity)
	if !res.Success {
		return res
	}

	// The purchase is durable from here on. Side-effect failures are logged,
	// never surfaced, and must run even if the request context is gone.
	sideCtx := context.WithoutCancel(ctx)
	s.invalidateCategory(sideCtx, product.Category)

	if product.Stock <= s.threshold {
		if err := s.alerts.PublishLowStock(sideCtx, product.ID, product.Stock); err != nil {
			s.logger.Warn("low-stock alert publish failed",
				zap.Int64("product_id", product.ID),
				zap.Int("stock", product.Stock),
				zap.Error(err))
		}
	}

	return res
}

func (s *InventoryService) deductStock(ctx context.Context, productID int64, quantity int) (*domain.Product, domain.PurchaseResult) {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		s.logger.Error("begin transaction failed",
			zap.Int64("product_id", productID), zap.Error(err))
		return nil, failure(domain.FailureInternal, purchaseFailedMessage)
	}
	defer tx.Rollback()

	product, err := tx.GetForUpdate(ctx, productID)
	if err != nil {
		s.logger.Error("locked product read failed",
			zap.Int64("product_id", productID), zap.Error(err))
		return nil, failure(domain.FailureInternal, purchaseFailedMessage)
	}
	if product == nil {
		return nil, failure(domain.FailureNotFound, "Product not found")
	}
	if product.Stock < quantity {
		return nil, failure(domain.FailureInsufficientStock,
			fmt.Sprintf("Insufficient stock. Available: %d", product.Stock))
	}

	product.Stock -= quantity
	product.UpdatedAt = time.Now().UTC()
	if err := tx.Save(ctx, *product); err != nil {
		s.logger.Error("stock update failed",
			zap.Int64("product_id", productID), zap.Error(err))
		return nil, failure(domain.FailureInternal, purchaseFailedMessage)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("purchase commit failed",
			zap.Int64("product_id", productID), zap.Error(err))
		return nil, failure(domain.FailureInternal, purchaseFailedMessage)
	}

	return product, domain.PurchaseResult{
		Success:  true,
		NewStock: product.Stock,
		Message:  "Purchase successful",
	}
}

func (s *InventoryService) invalidateCategory(ctx context.Context, category string) {
	key := domain.CategoryCacheKey(category)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("cache invalidation failed",
			zap.String("key", key), zap.Error(err))
	}
}

// ListByCategory serves category listings read-through: a cache hit
// short-circuits, any cache trouble counts as a miss, and a miss repopulates
// the cache from the store.
func (s *InventoryService) ListByCategory(ctx context.Context, category string) ([]domain.ProductSnapshot, error) {
	key := domain.CategoryCacheKey(category)

	if data, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("cache read failed, falling back to store",
			zap.String("key", key), zap.Error(err))
	} else if data != nil {
		var snapshots []domain.ProductSnapshot
		if err := json.Unmarshal(data, &snapshots); err == nil {
			return snapshots, nil
		}
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	}

	products, err := s.store.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}

	snapshots := make([]domain.ProductSnapshot, 0, len(products))
	for _, p := range products {
		snapshots = append(snapshots, p.Snapshot())
	}

	if data, err := json.Marshal(snapshots); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.logger.Warn("cache populate failed",
				zap.String("key", key), zap.Error(err))
		}
	}

	return snapshots, nil
}
