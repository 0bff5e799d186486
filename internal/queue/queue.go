// Package queue publishes and tails stats events on a message broker.
package queue

import (
	"context"
	"errors"
)

// ErrDisabled is returned by the factory when no queue type is configured
var ErrDisabled = errors.New("queue disabled")

// Publisher publishes messages to a queue
type Publisher interface {
	// Publish publishes a message to a subject/topic
	Publish(ctx context.Context, subject string, data []byte) error

	// Close closes the connection
	Close() error
}

// Subscriber tails a subject. Subscriptions only see messages published
// after they start and end when ctx is cancelled.
type Subscriber interface {
	Subscribe(ctx context.Context, subject string, handler MessageHandler) error

	// Close closes the connection
	Close() error
}

// MessageHandler handles incoming messages
type MessageHandler func(data []byte) error

// Queue combines Publisher and Subscriber interfaces
type Queue interface {
	Publisher
	Subscriber
}

// sanitizeName replaces characters not allowed in stream/consumer names
// (anything but A-Z, a-z, 0-9, dash and underscore)
func sanitizeName(subject string) string {
	result := make([]byte, 0, len(subject))
	for i := 0; i < len(subject); i++ {
		c := subject[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	return string(result)
}
