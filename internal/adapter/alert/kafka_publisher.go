// Package alert implements the producer side of the low-stock alert channel.
package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"warehousesvc/internal/core/domain"
)

// messageWriter is the slice of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher emits low-stock alerts to a single durable topic. Messages
// are keyed by product id, so alerts for one product land on one partition in
// publish order. Publish errors propagate; the caller decides whether a
// failed alert may fail the operation that triggered it.
type KafkaPublisher struct {
	writer       messageWriter
	threshold    int
	writeTimeout time.Duration
	now          func() time.Time
}

func NewKafkaPublisher(broker, topic string, threshold int, writeTimeout time.Duration) *KafkaPublisher {
	if writeTimeout <= 0 {
		writeTimeout = 2 * time.Second
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: writeTimeout,
	}
	return &KafkaPublisher{
		writer:       w,
		threshold:    threshold,
		writeTimeout: writeTimeout,
		now:          time.Now,
	}
}

func (p *KafkaPublisher) PublishLowStock(ctx context.Context, productID int64, stockLevel int) error {
	body, err := json.Marshal(domain.LowStockAlert{
		ProductID:  productID,
		StockLevel: stockLevel,
		Threshold:  p.threshold,
		AlertTime:  p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode low-stock alert: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(productID, 10)),
		Value: body,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish low-stock alert: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if c, ok := p.writer.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
