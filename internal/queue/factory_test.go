package queue

import (
	"errors"
	"testing"

	"github.com/anirame128/fortnite-insight-dashboard/internal/config"
)

func TestNewQueue(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		q, err := NewQueue(config.QueueConfig{})
		if !errors.Is(err, ErrDisabled) {
			t.Errorf("Expected ErrDisabled, got %v", err)
		}
		if q != nil {
			t.Error("Expected nil queue")
		}
	})

	t.Run("memory", func(t *testing.T) {
		q, err := NewQueue(config.QueueConfig{Type: "MEMORY"})
		if err != nil {
			t.Fatalf("NewQueue failed: %v", err)
		}
		if _, ok := q.(*MemoryQueue); !ok {
			t.Errorf("Expected *MemoryQueue, got %T", q)
		}
	})

	t.Run("nats", func(t *testing.T) {
		_, url, cleanup := setupTestNATS(t)
		defer cleanup()

		p, err := NewPublisher(config.QueueConfig{Type: "nats", URL: url})
		if err != nil {
			t.Fatalf("NewPublisher failed: %v", err)
		}
		defer func() { _ = p.Close() }()
		if _, ok := p.(*NATSQueue); !ok {
			t.Errorf("Expected *NATSQueue, got %T", p)
		}
	})

	t.Run("kafka without brokers", func(t *testing.T) {
		if _, err := NewQueue(config.QueueConfig{Type: "kafka"}); err == nil {
			t.Error("Expected error")
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		if _, err := NewSubscriber(config.QueueConfig{Type: "rabbitmq"}); err == nil {
			t.Error("Expected error for unsupported type")
		}
	})
}
