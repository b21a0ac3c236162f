package coordinator

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/adapters/memory"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

type fakeCustomers struct {
	customers map[string]domain.Customer
	err       error
	calls     int
}

func (f *fakeCustomers) FindCustomer(ctx context.Context, id string) (domain.Customer, bool, error) {
	f.calls++
	if f.err != nil {
		return domain.Customer{}, false, f.err
	}
	c, ok := f.customers[id]
	return c, ok, nil
}

type fakeProducts struct {
	err   error
	short bool
	block bool
	got   [][]domain.PurchaseLine
}

func (f *fakeProducts) Purchase(ctx context.Context, lines []domain.PurchaseLine) ([]domain.PurchaseResult, error) {
	f.got = append(f.got, lines)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.PurchaseResult, 0, len(lines))
	for _, l := range lines {
		out = append(out, domain.PurchaseResult{
			ProductID: l.ProductID,
			Name:      "product",
			Price:     decimal.NewFromInt(10),
			Quantity:  l.Quantity,
		})
	}
	if f.short {
		out = out[:len(out)-1]
	}
	return out, nil
}

// failingStore wraps the memory store and fails the line write number failLineAt (1-based).
type failingStore struct {
	*memory.OrderStore
	failOrder  bool
	failLineAt int
	lineCalls  int
}

func newFailingStore() *failingStore {
	return &failingStore{OrderStore: memory.NewOrderStore()}
}

func (s *failingStore) SaveOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	if s.failOrder {
		return domain.Order{}, errors.New("disk full")
	}
	return s.OrderStore.SaveOrder(ctx, o)
}

func (s *failingStore) SaveOrderLine(ctx context.Context, l domain.OrderLine) (domain.OrderLine, error) {
	s.lineCalls++
	if s.failLineAt > 0 && s.lineCalls == s.failLineAt {
		return domain.OrderLine{}, errors.New("constraint violation")
	}
	return s.OrderStore.SaveOrderLine(ctx, l)
}

type fakePayments struct {
	mu  sync.Mutex
	err error
	got []domain.PaymentRequest
}

func (f *fakePayments) RequestPayment(ctx context.Context, req domain.PaymentRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, req)
	return f.err
}

type fakePublisher struct {
	mu  sync.Mutex
	err error
	got []domain.OrderConfirmation
}

func (f *fakePublisher) PublishConfirmation(ctx context.Context, c domain.OrderConfirmation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, c)
	return f.err
}

// funcStep adapts a function to Step for orchestrator tests.
type funcStep struct {
	name   string
	detail string
	fn     func(ctx context.Context) error
}

func (s funcStep) Name() string                      { return s.name }
func (s funcStep) Detail() string                    { return s.detail }
func (s funcStep) Execute(ctx context.Context) error { return s.fn(ctx) }
