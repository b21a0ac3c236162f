package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

type mapCache struct {
	data   map[string]string
	getErr error
	setErr error
	sets   int
}

func newMapCache() *mapCache { return &mapCache{data: map[string]string{}} }

func (m *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value.(string)
	return nil
}

func (m *mapCache) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.data[key], nil
}

func (m *mapCache) GenerateKey(operation, key string) string {
	return fmt.Sprintf("test:%s:%s", operation, key)
}

type countingDirectory struct {
	customers map[string]domain.Customer
	err       error
	calls     int
}

func (d *countingDirectory) FindCustomer(_ context.Context, id string) (domain.Customer, bool, error) {
	d.calls++
	if d.err != nil {
		return domain.Customer{}, false, d.err
	}
	c, ok := d.customers[id]
	return c, ok, nil
}

func TestCachedCustomersReadThrough(t *testing.T) {
	dir := &countingDirectory{customers: map[string]domain.Customer{
		"1": {ID: "1", FirstName: "Ada", Email: "ada@example.com"},
	}}
	store := newMapCache()
	c := NewCachedCustomers(dir, store, time.Minute)
	ctx := context.Background()

	first, found, err := c.FindCustomer(ctx, "1")
	require.NoError(t, err)
	require.True(t, found)

	second, found, err := c.FindCustomer(ctx, "1")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, dir.calls)
	assert.Contains(t, store.data, "test:customer:1")
}

func TestCachedCustomersMissNotCached(t *testing.T) {
	dir := &countingDirectory{customers: map[string]domain.Customer{}}
	store := newMapCache()
	c := NewCachedCustomers(dir, store, time.Minute)

	for i := 0; i < 2; i++ {
		_, found, err := c.FindCustomer(context.Background(), "7")
		require.NoError(t, err)
		assert.False(t, found)
	}
	assert.Equal(t, 2, dir.calls)
	assert.Zero(t, store.sets)
}

func TestCachedCustomersCacheFailuresFallThrough(t *testing.T) {
	dir := &countingDirectory{customers: map[string]domain.Customer{"1": {ID: "1"}}}
	store := newMapCache()
	store.getErr = errors.New("redis down")
	store.setErr = errors.New("redis down")
	c := NewCachedCustomers(dir, store, time.Minute)

	customer, found, err := c.FindCustomer(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1", customer.ID)
}

func TestCachedCustomersCorruptEntry(t *testing.T) {
	dir := &countingDirectory{customers: map[string]domain.Customer{"1": {ID: "1"}}}
	store := newMapCache()
	store.data["test:customer:1"] = "{not json"
	c := NewCachedCustomers(dir, store, time.Minute)

	_, found, err := c.FindCustomer(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, dir.calls)
}

func TestCachedCustomersDirectoryError(t *testing.T) {
	dir := &countingDirectory{err: errors.New("boom")}
	c := NewCachedCustomers(dir, newMapCache(), time.Minute)

	_, _, err := c.FindCustomer(context.Background(), "1")
	assert.EqualError(t, err, "boom")
}
