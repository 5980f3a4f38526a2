package main

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"warehousesvc/internal/adapter/alert"
	"warehousesvc/internal/adapter/handler"
	"warehousesvc/internal/adapter/storage"
	"warehousesvc/internal/config"
	"warehousesvc/internal/core/domain"
	"warehousesvc/internal/core/service"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("failed to open mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping mysql", zap.Error(err))
	}
	logger.Info("connected to mysql")

	store := storage.NewMySQLStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to ensure schema", zap.Error(err))
	}
	if err := seedProducts(ctx, store, logger); err != nil {
		logger.Fatal("failed to seed products", zap.Error(err))
	}

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	logger.Info("connected to redis")

	cache := storage.NewRedisCache(rdb, cfg.CacheOpTimeout)

	// Kafka
	publisher := alert.NewKafkaPublisher(cfg.KafkaBroker, cfg.LowStockTopic, cfg.LowStockThreshold, cfg.PublishTimeout)
	logger.Info("alert publisher initialized",
		zap.String("topic", cfg.LowStockTopic),
		zap.Int("threshold", cfg.LowStockThreshold))

	inventory := service.NewInventoryService(store, cache, publisher, logger, service.Config{
		LowStockThreshold: cfg.LowStockThreshold,
		CacheTTL:          cfg.CacheTTL,
		TxTimeout:         cfg.TxTimeout,
	})

	// gRPC health endpoint for infrastructure probes
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}
	go func() {
		logger.Info("gRPC health server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// HTTP API
	httpHandler := handler.NewHTTPHandler(inventory)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", httpHandler.HealthCheck)
	mux.HandleFunc("/api/products", httpHandler.ListProducts)
	mux.HandleFunc("/api/purchase", httpHandler.Purchase)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.RequestLogger(logger, mux),
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	healthServer.Shutdown()
	logger.Info("gRPC server stopped")

	if err := publisher.Close(); err != nil {
		logger.Error("failed to close alert publisher", zap.Error(err))
	}
	rdb.Close()
	db.Close()
	logger.Info("connections closed")
}

// seedProducts provisions demo rows on an empty table.
func seedProducts(ctx context.Context, store *storage.MySQLStore, logger *zap.Logger) error {
	n, err := store.CountProducts(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	seeds := []domain.Product{
		{Name: "Claw Hammer", Category: "tools", Price: decimal.RequireFromString("12.50"), Stock: 120},
		{Name: "Cordless Drill", Category: "tools", Price: decimal.RequireFromString("89.00"), Stock: 35},
		{Name: "Garden Hose", Category: "garden", Price: decimal.RequireFromString("24.99"), Stock: 60},
		{Name: "Pruning Shears", Category: "garden", Price: decimal.RequireFromString("15.75"), Stock: 12},
	}
	for i := range seeds {
		if err := store.CreateProduct(ctx, &seeds[i]); err != nil {
			return err
		}
	}
	logger.Info("seeded products", zap.Int("count", len(seeds)))
	return nil
}
