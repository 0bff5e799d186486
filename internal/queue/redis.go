package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig represents Redis Streams configuration
type RedisConfig struct {
	URL    string // Redis URL (e.g., redis://localhost:6379)
	Stream string // Stream key prefix (default: "fni-stats")
	MaxLen int64  // Approximate cap on each stream (default: 10000)
}

// RedisQueue implements Queue using Redis Streams
type RedisQueue struct {
	client *redis.Client
	config RedisConfig
}

// newRedisQueue creates a new Redis Streams queue instance
func newRedisQueue(cfg RedisConfig) (*RedisQueue, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{Addr: cfg.URL}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if cfg.Stream == "" {
		cfg.Stream = "fni-stats"
	}
	if cfg.MaxLen <= 0 {
		cfg.MaxLen = 10000
	}

	return &RedisQueue{client: client, config: cfg}, nil
}

// streamKey converts a subject to a Redis stream key
func (q *RedisQueue) streamKey(subject string) string {
	return fmt.Sprintf("%s:%s", q.config.Stream, subject)
}

// Publish appends a message to the subject's stream
func (q *RedisQueue) Publish(ctx context.Context, subject string, data []byte) error {
	stream := q.streamKey(subject)

	err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: q.config.MaxLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{"data": data},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to Redis stream %s: %w", stream, err)
	}
	return nil
}

// Subscribe reads new entries with blocking XREAD until ctx is cancelled
func (q *RedisQueue) Subscribe(ctx context.Context, subject string, handler MessageHandler) error {
	stream := q.streamKey(subject)

	// resolve "$" once so entries added between reads are not skipped
	lastID := "0-0"
	last, err := q.client.XRevRangeN(ctx, stream, "+", "-", 1).Result()
	if err != nil {
		return fmt.Errorf("failed to read Redis stream %s: %w", stream, err)
	}
	if len(last) > 0 {
		lastID = last[0].ID
	}

	go q.readStream(ctx, stream, lastID, handler)
	return nil
}

func (q *RedisQueue) readStream(ctx context.Context, stream, lastID string, handler MessageHandler) {
	for ctx.Err() == nil {
		streams, err := q.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{stream, lastID},
			Count:   100,
			Block:   2 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				lastID = msg.ID
				data, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}
				_ = handler([]byte(data))
			}
		}
	}
}

// Close closes the Redis connection
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
