package queue

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

// Test helper: get Redis URL from env or default
func getRedisURL() string {
	if url := os.Getenv("REDIS_URL"); url != "" {
		return url
	}
	return "redis://localhost:6379"
}

func TestRedisQueue_PublishSubscribe(t *testing.T) {
	stream := fmt.Sprintf("fni-test-%d", time.Now().UnixNano())
	q, err := newRedisQueue(RedisConfig{URL: getRedisURL(), Stream: stream})
	if err != nil {
		t.Skip("Redis not available, skipping test")
	}
	defer func() {
		q.client.Del(context.Background(), q.streamKey("stats.computed"))
		_ = q.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := q.Publish(ctx, "stats.computed", []byte("old")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	var c collector
	if err := q.Subscribe(ctx, "stats.computed", c.handle); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := q.Publish(ctx, "stats.computed", []byte("new")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	got := c.waitFor(t, 1)
	if string(got[0]) != "new" {
		t.Errorf("Expected only the new message, got %q", got)
	}
}

func TestNewRedisQueue_Unreachable(t *testing.T) {
	if _, err := newRedisQueue(RedisConfig{URL: "redis://127.0.0.1:1"}); err == nil {
		t.Error("Expected error for unreachable Redis")
	}
}
