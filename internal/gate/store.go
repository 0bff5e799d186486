package gate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anirame128/fortnite-insight-dashboard/internal/config"
	"github.com/anirame128/fortnite-insight-dashboard/internal/logging"
)

// Store keeps one gate per caller session
type Store interface {
	Begin(ctx context.Context, session string) error
	End(ctx context.Context, session string, err error) error
	Cancel(ctx context.Context, session string)
	Snapshot(ctx context.Context, session string) (Snapshot, error)
	Close() error
}

// NewStore creates the store selected by cfg.Store
func NewStore(cfg config.GateConfig, logger *logging.Logger) (Store, error) {
	opts := []Option{WithLogger(logger)}
	switch cfg.Store {
	case "", "memory":
		return NewMemoryStore(ConfigFrom(cfg), opts...), nil
	case "redis":
		return NewRedisStore(RedisConfig{
			URL:       cfg.RedisURL,
			KeyPrefix: cfg.KeyPrefix,
		}, ConfigFrom(cfg), opts...)
	default:
		return nil, fmt.Errorf("unsupported gate store: %s", cfg.Store)
	}
}

// MemoryStore keeps gates in process memory
type MemoryStore struct {
	cfg  Config
	opts []Option

	mu    sync.Mutex
	gates map[string]*Gate
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore(cfg Config, opts ...Option) *MemoryStore {
	return &MemoryStore{
		cfg:   cfg,
		opts:  opts,
		gates: make(map[string]*Gate),
	}
}

// Gate returns the session's gate, creating it on first use
func (s *MemoryStore) Gate(session string) *Gate {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gates[session]
	if !ok {
		g = New(s.cfg, s.opts...)
		s.gates[session] = g
	}
	return g
}

func (s *MemoryStore) Begin(_ context.Context, session string) error {
	return s.Gate(session).Begin()
}

func (s *MemoryStore) End(_ context.Context, session string, err error) error {
	return s.Gate(session).End(err)
}

func (s *MemoryStore) Cancel(_ context.Context, session string) {
	s.Gate(session).Cancel()
}

func (s *MemoryStore) Snapshot(_ context.Context, session string) (Snapshot, error) {
	return s.Gate(session).Snapshot(), nil
}

// Sweep drops sessions that are idle, clean and unused for maxIdle
func (s *MemoryStore) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for session, g := range s.gates {
		if g.idleSince(g.clock().Add(-maxIdle)) {
			delete(s.gates, session)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked sessions
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.gates)
}

func (s *MemoryStore) Close() error {
	return nil
}
