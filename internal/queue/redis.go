package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const popTimeout = time.Second

// RedisBroker is a Broker backed by Redis lists: LPUSH to publish, BRPOP to
// consume.
type RedisBroker struct {
	client *redis.Client
	logger *zap.SugaredLogger
}

// NewRedisBroker creates a broker on an existing Redis client.
func NewRedisBroker(client *redis.Client, logger *zap.SugaredLogger) *RedisBroker {
	return &RedisBroker{client: client, logger: logger}
}

// Publish pushes a message onto the named queue.
func (b *RedisBroker) Publish(ctx context.Context, queueName string, message []byte) error {
	if err := b.client.LPush(ctx, queueName, message).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queueName, err)
	}
	return nil
}

// Subscribe starts a consumer goroutine popping messages off the named queue
// until the context is cancelled. Messages whose handler fails are pushed to
// the queue's dead-letter list.
func (b *RedisBroker) Subscribe(ctx context.Context, queueName string, handler MessageHandler) error {
	go func() {
		for {
			if ctx.Err() != nil {
				return
			}

			res, err := b.client.BRPop(ctx, popTimeout, queueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				b.logger.Errorw("failed to pop message", "queue", queueName, "error", err)
				time.Sleep(popTimeout)
				continue
			}

			// BRPOP returns [key, value].
			if len(res) != 2 {
				continue
			}
			message := []byte(res[1])

			if err := handler(ctx, message); err != nil {
				b.logger.Errorw("message handler failed", "queue", queueName, "error", err)
				if dlqErr := b.client.LPush(ctx, DLQName(queueName), message).Err(); dlqErr != nil {
					b.logger.Errorw("failed to push message to DLQ", "queue", queueName, "error", dlqErr)
				}
			}
		}
	}()

	return nil
}

// Close closes the underlying Redis client.
func (b *RedisBroker) Close() error {
	return b.client.Close()
}
