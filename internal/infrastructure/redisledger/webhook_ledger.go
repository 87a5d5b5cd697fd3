package redisledger

import (
	"context"
	"fmt"
	"time"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/config"

	"github.com/go-redis/redis/v8"
)

// WebhookLedger records applied webhook event ids as expiring redis keys.
type WebhookLedger struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewWebhookLedger(client *redis.Client, prefix string, ttl time.Duration) *WebhookLedger {
	return &WebhookLedger{client: client, prefix: prefix, ttl: ttl}
}

func (l *WebhookLedger) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *WebhookLedger) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := l.client.Exists(ctx, l.key(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("webhook ledger: exists: %w", err)
	}
	return n > 0, nil
}

// Remember keeps the first write; a concurrent duplicate is a no-op.
func (l *WebhookLedger) Remember(ctx context.Context, eventID string) error {
	if err := l.client.SetNX(ctx, l.key(eventID), time.Now().UTC().Unix(), l.ttl).Err(); err != nil {
		return fmt.Errorf("webhook ledger: setnx: %w", err)
	}
	return nil
}

func (l *WebhookLedger) Close() error {
	return l.client.Close()
}

func (l *WebhookLedger) key(eventID string) string {
	return l.prefix + eventID
}
