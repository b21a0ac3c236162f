// Package sqlite persists orders and order lines in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/core/ports"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"

	_ "modernc.org/sqlite"
)

// reference is not unique: repeating a request creates a second order.
const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    reference       TEXT        NOT NULL,
    total_amount    TEXT        NOT NULL,
    payment_method  TEXT        NOT NULL,
    customer_id     TEXT        NOT NULL,
    created_at      TEXT        NOT NULL
);

CREATE TABLE IF NOT EXISTS order_lines (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id        INTEGER     NOT NULL REFERENCES orders(id),
    product_id      INTEGER     NOT NULL,
    quantity        REAL        NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_lines_order_id ON order_lines(order_id);
`

const timeLayout = "2006-01-02T15:04:05.999999999Z"

var _ ports.OrderStore = (*Store)(nil)

// Store is an autocommit OrderStore: every Save* call is its own transaction.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply order schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) SaveOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	const q = `
		INSERT INTO orders (reference, total_amount, payment_method, customer_id, created_at)
		VALUES (?, ?, ?, ?, ?)`

	if order.Reference == "" {
		order.Reference = "ORD-" + uuid.NewString()
	}
	order.CreatedAt = s.now().UTC()

	res, err := s.db.ExecContext(ctx, q,
		order.Reference,
		order.Amount.String(),
		string(order.PaymentMethod),
		order.CustomerID,
		order.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("sqlite: save order %q: %w", order.Reference, err)
	}

	if order.ID, err = res.LastInsertId(); err != nil {
		return domain.Order{}, fmt.Errorf("sqlite: order id for %q: %w", order.Reference, err)
	}
	return order, nil
}

// SaveOrderLine fails with a foreign key error when the parent order is missing.
func (s *Store) SaveOrderLine(ctx context.Context, line domain.OrderLine) (domain.OrderLine, error) {
	const q = `INSERT INTO order_lines (order_id, product_id, quantity) VALUES (?, ?, ?)`

	res, err := s.db.ExecContext(ctx, q, line.OrderID, line.ProductID, line.Quantity)
	if err != nil {
		return domain.OrderLine{}, fmt.Errorf("sqlite: save line for order %d product %d: %w", line.OrderID, line.ProductID, err)
	}

	if line.ID, err = res.LastInsertId(); err != nil {
		return domain.OrderLine{}, fmt.Errorf("sqlite: line id for order %d: %w", line.OrderID, err)
	}
	return line, nil
}
