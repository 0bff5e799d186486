package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anirame128/fortnite-insight-dashboard/internal/compression"
	"github.com/anirame128/fortnite-insight-dashboard/internal/config"
)

// keyedPublisher is implemented by brokers that partition by key
type keyedPublisher interface {
	PublishKeyed(ctx context.Context, subject string, key, data []byte) error
}

// EventPublisher encodes values as framed JSON and publishes them on one
// subject
type EventPublisher struct {
	publisher Publisher
	subject   string
	algo      compression.Algorithm
}

// NewEventPublisher wraps publisher for cfg.Subject, snappy-compressing
// payloads when cfg.Compress is set
func NewEventPublisher(publisher Publisher, cfg config.QueueConfig) *EventPublisher {
	algo := compression.None
	if cfg.Compress {
		algo = compression.Snappy
	}
	return &EventPublisher{publisher: publisher, subject: cfg.Subject, algo: algo}
}

// Subject returns the subject events are published on
func (p *EventPublisher) Subject() string {
	return p.subject
}

// Publish encodes v and publishes it. key selects the partition on brokers
// that support it and is ignored elsewhere.
func (p *EventPublisher) Publish(ctx context.Context, key string, v interface{}) error {
	frame, err := EncodeEvent(p.algo, v)
	if err != nil {
		return err
	}
	if kp, ok := p.publisher.(keyedPublisher); ok && key != "" {
		return kp.PublishKeyed(ctx, p.subject, []byte(key), frame)
	}
	return p.publisher.Publish(ctx, p.subject, frame)
}

// Close closes the underlying publisher
func (p *EventPublisher) Close() error {
	return p.publisher.Close()
}

// EncodeEvent marshals v to JSON and frames it
func EncodeEvent(algo compression.Algorithm, v interface{}) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return compression.EncodeFrame(algo, payload)
}

// DecodeEvent unframes data and unmarshals the JSON into v
func DecodeEvent(data []byte, v interface{}) error {
	payload, _, err := compression.DecodeFrame(data)
	if err != nil {
		return fmt.Errorf("failed to decode event frame: %w", err)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return nil
}
