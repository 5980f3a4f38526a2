package port

import "context"

// AlertPublisher emits low-stock alerts to the durable alert channel. Publish
// errors propagate to the caller; whether to suppress them is the caller's
// decision.
type AlertPublisher interface {
	PublishLowStock(ctx context.Context, productID int64, stockLevel int) error
}
