package tests

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"warehousesvc/internal/adapter/storage"
	"warehousesvc/internal/core/domain"
	"warehousesvc/internal/core/service"
)

type recordedAlert struct {
	productID  int64
	stockLevel int
}

// recordingPublisher stands in for the Kafka channel so these tests only need
// MySQL and Redis.
type recordingPublisher struct {
	mu     sync.Mutex
	alerts []recordedAlert
	fail   bool
}

func (p *recordingPublisher) PublishLowStock(ctx context.Context, productID int64, stockLevel int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.alerts = append(p.alerts, recordedAlert{productID, stockLevel})
	return nil
}

type testEnv struct {
	mysql   *sql.DB
	redis   *redis.Client
	store   *storage.MySQLStore
	cache   *storage.RedisCache
	cleanup func()
}

func setupTestEnv(t *testing.T) *testEnv {
	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/warehouse?parseTime=true"
	}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		db.Close()
		t.Skipf("Redis not available: %v", err)
	}

	store := storage.NewMySQLStore(db)
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	return &testEnv{
		mysql: db,
		redis: rdb,
		store: store,
		cache: storage.NewRedisCache(rdb, time.Second),
		cleanup: func() {
			rdb.Close()
			db.Close()
		},
	}
}

func (env *testEnv) newService(alerts *recordingPublisher, threshold int) *service.InventoryService {
	return service.NewInventoryService(env.store, env.cache, alerts, zap.NewNop(), service.Config{
		LowStockThreshold: threshold,
		CacheTTL:          time.Minute,
		TxTimeout:         5 * time.Second,
	})
}

func (env *testEnv) seed(t *testing.T, category string, stock int) *domain.Product {
	t.Helper()
	ctx := context.Background()
	env.mysql.ExecContext(ctx, `DELETE FROM products WHERE category = ?`, category)
	env.redis.Del(ctx, domain.CategoryCacheKey(category))

	p := &domain.Product{
		Name:     "integration-widget",
		Category: category,
		Price:    decimal.RequireFromString("42.00"),
		Stock:    stock,
	}
	if err := env.store.CreateProduct(ctx, p); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return p
}

func TestIntegration_ConcurrentPurchasesNeverOversell(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	initialStock := 10
	totalRequests := 20

	p := env.seed(t, "it-concurrent", initialStock)
	svc := env.newService(&recordingPublisher{}, 10)

	var success atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res := svc.Purchase(ctx, p.ID, 1); res.Success {
				success.Add(1)
			}
		}()
	}
	wg.Wait()

	if success.Load() != int32(initialStock) {
		t.Errorf("expected %d successful purchases, got %d", initialStock, success.Load())
	}

	var stock int
	env.mysql.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = ?`, p.ID).Scan(&stock)
	if stock != 0 {
		t.Errorf("expected final stock 0, got %d", stock)
	}
}

func TestIntegration_CacheCoherenceAfterPurchase(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	p := env.seed(t, "it-coherence", 50)
	svc := env.newService(&recordingPublisher{}, 10)

	// Warm the cache.
	snaps, err := svc.ListByCategory(ctx, "it-coherence")
	if err != nil {
		t.Fatalf("warm-up read: %v", err)
	}
	if len(snaps) != 1 || snaps[0].Stock != 50 {
		t.Fatalf("unexpected warm-up snapshots: %+v", snaps)
	}

	if res := svc.Purchase(ctx, p.ID, 3); !res.Success {
		t.Fatalf("purchase failed: %q", res.Message)
	}

	snaps, err = svc.ListByCategory(ctx, "it-coherence")
	if err != nil {
		t.Fatalf("post-purchase read: %v", err)
	}
	if len(snaps) != 1 || snaps[0].Stock != 47 {
		t.Errorf("stale stock after invalidation: %+v", snaps)
	}
}

func TestIntegration_LowStockAlertFlow(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	p := env.seed(t, "it-alerts", 12)
	alerts := &recordingPublisher{}
	svc := env.newService(alerts, 10)

	res := svc.Purchase(ctx, p.ID, 3)
	if !res.Success || res.NewStock != 9 {
		t.Fatalf("expected success at stock 9, got %+v", res)
	}

	alerts.mu.Lock()
	defer alerts.mu.Unlock()
	if len(alerts.alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts.alerts))
	}
	if a := alerts.alerts[0]; a.productID != p.ID || a.stockLevel != 9 {
		t.Errorf("unexpected alert: %+v", a)
	}
}

func TestIntegration_PurchaseSurvivesDeadAlertChannel(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	p := env.seed(t, "it-dead-channel", 5)
	svc := env.newService(&recordingPublisher{fail: true}, 10)

	res := svc.Purchase(ctx, p.ID, 2)
	if !res.Success || res.NewStock != 3 {
		t.Fatalf("purchase must succeed with a dead alert channel, got %+v", res)
	}

	var stock int
	env.mysql.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = ?`, p.ID).Scan(&stock)
	if stock != 3 {
		t.Errorf("expected stock 3 in store, got %d", stock)
	}
}

func TestIntegration_InsufficientStockLeavesRowUntouched(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	p := env.seed(t, "it-insufficient", 2)
	svc := env.newService(&recordingPublisher{}, 10)

	res := svc.Purchase(ctx, p.ID, 3)
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Message != "Insufficient stock. Available: 2" {
		t.Errorf("unexpected message: %q", res.Message)
	}

	var stock int
	env.mysql.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = ?`, p.ID).Scan(&stock)
	if stock != 2 {
		t.Errorf("expected stock unchanged at 2, got %d", stock)
	}
}
