// Package cache decorates collaborator ports with a read-through cache.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/core/ports"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
	kv "github.com/jcmexdev/ecommerce-orders/internal/pkg/cache"
)

const customerOperation = "customer"

var _ ports.CustomerDirectory = (*CachedCustomers)(nil)

// CachedCustomers caches found customers. Misses are never cached, so a
// customer created after a failed lookup is seen on the next run.
type CachedCustomers struct {
	next  ports.CustomerDirectory
	cache kv.Cache
	ttl   time.Duration
}

func NewCachedCustomers(next ports.CustomerDirectory, c kv.Cache, ttl time.Duration) *CachedCustomers {
	return &CachedCustomers{next: next, cache: c, ttl: ttl}
}

func (c *CachedCustomers) FindCustomer(ctx context.Context, id string) (domain.Customer, bool, error) {
	key := c.cache.GenerateKey(customerOperation, id)

	raw, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		slog.WarnContext(ctx, "customer cache read failed", "customer_id", id, "error", err)
	case raw != "":
		var customer domain.Customer
		uerr := json.Unmarshal([]byte(raw), &customer)
		if uerr == nil {
			return customer, true, nil
		}
		slog.WarnContext(ctx, "customer cache entry unreadable", "customer_id", id, "error", uerr)
	}

	customer, found, err := c.next.FindCustomer(ctx, id)
	if err != nil || !found {
		return customer, found, err
	}

	b, err := json.Marshal(customer)
	if err != nil {
		slog.WarnContext(ctx, "customer cache encode failed", "customer_id", id, "error", err)
		return customer, true, nil
	}
	if err := c.cache.Set(ctx, key, string(b), c.ttl); err != nil {
		slog.WarnContext(ctx, "customer cache write failed", "customer_id", id, "error", err)
	}
	return customer, true, nil
}
