// Package publisher emits order confirmation events.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/core/ports"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

const DefaultChannel = "order-topic"

// Publisher is the subset of redis.Cmdable used here.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

var _ ports.ConfirmationPublisher = (*RedisPublisher)(nil)

// RedisPublisher PUBLISHes confirmations as JSON. Delivery is fire-and-forget:
// it does not wait for, or require, any subscriber.
type RedisPublisher struct {
	client  Publisher
	channel string
}

func NewRedisPublisher(client Publisher, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) PublishConfirmation(ctx context.Context, c domain.OrderConfirmation) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode order confirmation: %w", err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("publish order confirmation to %q: %w", p.channel, err)
	}

	slog.DebugContext(ctx, "order confirmation published",
		"channel", p.channel,
		"order_reference", c.OrderReference,
		"receivers", receivers,
	)
	return nil
}
