package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaConfig represents Apache Kafka configuration
type KafkaConfig struct {
	Brokers      []string      // Kafka broker addresses
	BatchTimeout time.Duration // Producer batch timeout (default: 10ms)
	MaxAttempts  int           // Producer attempts per message (default: 3)
}

// KafkaQueue implements Queue using Apache Kafka. Subjects map to topics,
// which are auto-created on first write.
type KafkaQueue struct {
	config KafkaConfig

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// newKafkaQueue creates a new Kafka queue instance
func newKafkaQueue(cfg KafkaConfig) (*KafkaQueue, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}

	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}

	return &KafkaQueue{
		config:  cfg,
		writers: make(map[string]*kafka.Writer),
	}, nil
}

// writer returns the topic's writer, creating it on first use
func (q *KafkaQueue) writer(topic string) *kafka.Writer {
	q.mu.Lock()
	defer q.mu.Unlock()

	if w, ok := q.writers[topic]; ok {
		return w
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(q.config.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           q.config.BatchTimeout,
		RequiredAcks:           kafka.RequireOne,
		MaxAttempts:            q.config.MaxAttempts,
		AllowAutoTopicCreation: true,
	}
	q.writers[topic] = w
	return w
}

// Publish writes one message to the subject's topic
func (q *KafkaQueue) Publish(ctx context.Context, subject string, data []byte) error {
	return q.PublishKeyed(ctx, subject, nil, data)
}

// PublishKeyed writes one message with a partitioning key, so events of the
// same map land on the same partition in order
func (q *KafkaQueue) PublishKeyed(ctx context.Context, subject string, key, data []byte) error {
	err := q.writer(subject).WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to kafka topic %s: %w", subject, err)
	}
	return nil
}

// Subscribe tails the topic from its current end until ctx is cancelled
func (q *KafkaQueue) Subscribe(ctx context.Context, subject string, handler MessageHandler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  q.config.Brokers,
		Topic:    subject,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
	// no consumer group, so position explicitly at the end of the partition
	if err := reader.SetOffset(kafka.LastOffset); err != nil {
		_ = reader.Close()
		return fmt.Errorf("failed to seek kafka topic %s: %w", subject, err)
	}

	go func() {
		defer func() { _ = reader.Close() }()
		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					return
				}
				continue
			}
			_ = handler(msg.Value)
		}
	}()
	return nil
}

// Close closes all writers
func (q *KafkaQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	var lastErr error
	for topic, w := range q.writers {
		if err := w.Close(); err != nil {
			lastErr = err
		}
		delete(q.writers, topic)
	}
	return lastErr
}

// Stats returns writer stats for a topic (for monitoring)
func (q *KafkaQueue) Stats(topic string) kafka.WriterStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	if w, ok := q.writers[topic]; ok {
		return w.Stats()
	}
	return kafka.WriterStats{}
}
