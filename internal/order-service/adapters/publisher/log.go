package publisher

import (
	"context"
	"log/slog"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/core/ports"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

var _ ports.ConfirmationPublisher = LogPublisher{}

// LogPublisher writes confirmations to the log. It stands in for Redis when
// no REDIS_ADDR is configured.
type LogPublisher struct{}

func (LogPublisher) PublishConfirmation(ctx context.Context, c domain.OrderConfirmation) error {
	slog.InfoContext(ctx, "order confirmation",
		"order_reference", c.OrderReference,
		"total_amount", c.TotalAmount.String(),
		"payment_method", c.PaymentMethod,
		"customer_id", c.Customer.ID,
		"products", len(c.Products),
	)
	return nil
}
