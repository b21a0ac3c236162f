// Package memory keeps orders in process memory for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/core/ports"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

var _ ports.OrderStore = (*OrderStore)(nil)

// OrderStore keeps orders and lines in memory with sequential ids.
type OrderStore struct {
	mu        sync.RWMutex
	nextOrder int64
	nextLine  int64
	orders    map[int64]domain.Order
	orderIDs  []int64
	lines     []domain.OrderLine
	now       func() time.Time
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders: make(map[int64]domain.Order),
		now:    time.Now,
	}
}

func (s *OrderStore) SaveOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextOrder++
	order.ID = s.nextOrder
	if order.Reference == "" {
		order.Reference = "ORD-" + uuid.NewString()
	}
	order.CreatedAt = s.now().UTC()

	s.orders[order.ID] = order
	s.orderIDs = append(s.orderIDs, order.ID)
	return order, nil
}

func (s *OrderStore) SaveOrderLine(ctx context.Context, line domain.OrderLine) (domain.OrderLine, error) {
	if err := ctx.Err(); err != nil {
		return domain.OrderLine{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[line.OrderID]; !ok {
		return domain.OrderLine{}, fmt.Errorf("order store: order %d does not exist", line.OrderID)
	}

	s.nextLine++
	line.ID = s.nextLine
	s.lines = append(s.lines, line)
	return line, nil
}

// Orders returns every stored order in insertion order.
func (s *OrderStore) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, 0, len(s.orderIDs))
	for _, id := range s.orderIDs {
		out = append(out, s.orders[id])
	}
	return out
}

// Lines returns every stored line in insertion order.
func (s *OrderStore) Lines() []domain.OrderLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.OrderLine(nil), s.lines...)
}
