package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

const (
	// DefaultRequestTimeout bounds one inbound stats request, both upstream
	// fetches included
	DefaultRequestTimeout = 45 * time.Second

	// PublishTimeout bounds publishing one stats event
	PublishTimeout = 5 * time.Second

	// ShutdownTimeout is how long the server waits for in-flight requests
	ShutdownTimeout = 10 * time.Second

	// GateSweepInterval is how often idle in-memory gate sessions are dropped
	GateSweepInterval = 5 * time.Minute

	// GateSessionIdle is how long a clean session is kept after its last use
	GateSessionIdle = 30 * time.Minute
)

// =============================================================================
// HTTP Constants
// =============================================================================

const (
	// SessionHeader identifies the caller session for the cooldown gate.
	// Requests without it are keyed by client IP.
	SessionHeader = "X-Session-ID"

	// RetryAfterHeader carries the remaining cooldown in seconds
	RetryAfterHeader = "Retry-After"
)

// =============================================================================
// Queue Type Constants
// =============================================================================

// QueueType represents the type of message queue
type QueueType string

const (
	// QueueTypeNATS represents NATS JetStream queue
	QueueTypeNATS QueueType = "nats"

	// QueueTypeRedis represents Redis Streams queue
	QueueTypeRedis QueueType = "redis"

	// QueueTypeKafka represents Apache Kafka queue
	QueueTypeKafka QueueType = "kafka"

	// QueueTypeMemory represents in-memory queue (for testing)
	QueueTypeMemory QueueType = "memory"
)
