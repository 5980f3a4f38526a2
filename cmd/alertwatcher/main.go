// alertwatcher drains the low-stock alert topic and logs every alert. The
// business reaction to an alert (restocking, notifications) lives outside
// this repository; this binary exists to observe the channel and exercise the
// consumer-acknowledged delivery path.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"warehousesvc/internal/config"
	"warehousesvc/internal/core/domain"
)

const consumerGroup = "alert-watchers"

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.KafkaBroker},
		GroupID: consumerGroup,
		Topic:   cfg.LowStockTopic,
	})
	defer reader.Close()

	logger.Info("watching low-stock alerts",
		zap.String("topic", cfg.LowStockTopic),
		zap.String("group", consumerGroup))

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			logger.Error("fetch failed", zap.Error(err))
			continue
		}

		var a domain.LowStockAlert
		if err := json.Unmarshal(msg.Value, &a); err != nil {
			logger.Error("undecodable alert, skipping",
				zap.ByteString("body", msg.Value), zap.Error(err))
		} else {
			logger.Warn("low stock",
				zap.Int64("product_id", a.ProductID),
				zap.Int("stock_level", a.StockLevel),
				zap.Int("threshold", a.Threshold),
				zap.Time("alert_time", a.AlertTime))
		}

		// Commit only after handling; a crash before this point redelivers.
		if err := reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			logger.Error("commit failed", zap.Error(err))
		}
	}

	logger.Info("alert watcher stopped")
}
