package ports

import (
	"context"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

// CustomerDirectory looks customers up. found is false when the id does not
// resolve; err is reserved for failures to reach the directory.
type CustomerDirectory interface {
	FindCustomer(ctx context.Context, id string) (customer domain.Customer, found bool, err error)
}

// ProductPurchaser reserves every line in one batched call. Results match the
// input order and length; any failure fails the whole batch.
type ProductPurchaser interface {
	Purchase(ctx context.Context, lines []domain.PurchaseLine) ([]domain.PurchaseResult, error)
}

// OrderStore persists orders and their lines. Each call is an independent
// durable write; nothing spans calls.
type OrderStore interface {
	SaveOrder(ctx context.Context, order domain.Order) (domain.Order, error)
	SaveOrderLine(ctx context.Context, line domain.OrderLine) (domain.OrderLine, error)
}

// PaymentInitiator requests payment for a persisted order without waiting for settlement.
type PaymentInitiator interface {
	RequestPayment(ctx context.Context, req domain.PaymentRequest) error
}

// ConfirmationPublisher emits the order-confirmation event. It does not wait
// for downstream consumers.
type ConfirmationPublisher interface {
	PublishConfirmation(ctx context.Context, c domain.OrderConfirmation) error
}
