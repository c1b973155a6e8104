package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Magicred-1/agenthub/internal/models"
)

// RedisStore handles Redis operations: interaction event pub/sub and the
// counters backing the rate limiter.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying client for the rate limiter middleware.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// interactionChannel returns the pub/sub channel for a user's interaction
// events.
func interactionChannel(userID string) string {
	return fmt.Sprintf("interactions:%s", userID)
}

// PublishInteraction publishes an interaction event to the owning user's
// channel. Best-effort: subscribers that are not listening miss the event.
func (s *RedisStore) PublishInteraction(ctx context.Context, event *models.InteractionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, interactionChannel(event.UserID), data).Err()
}

// SubscribeInteractions subscribes to a user's interaction events. The
// returned channel is closed when ctx is cancelled.
func (s *RedisStore) SubscribeInteractions(ctx context.Context, userID string) <-chan models.InteractionEvent {
	sub := s.client.Subscribe(ctx, interactionChannel(userID))
	out := make(chan models.InteractionEvent)

	go func() {
		defer close(out)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event models.InteractionEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
