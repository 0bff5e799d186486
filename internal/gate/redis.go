package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anirame128/fortnite-insight-dashboard/internal/logging"
)

// RedisConfig represents the shared gate store configuration
type RedisConfig struct {
	URL         string        // Redis URL (e.g., redis://localhost:6379)
	KeyPrefix   string        // Key prefix (default: "fni:gate")
	InFlightTTL time.Duration // Lease on the in-flight marker (default: 2m)
}

// failuresTTL bounds how long an unresolved failure streak is remembered
const failuresTTL = 24 * time.Hour

// RedisStore shares gate state between service replicas. Each session uses
// three keys: an in-flight lease (SETNX), a failure counter and a cooldown
// marker whose TTL is the remaining cooldown.
type RedisStore struct {
	client *redis.Client
	cfg    Config
	rcfg   RedisConfig
	logger *logging.Logger
}

// NewRedisStore connects to Redis and returns a shared store
func NewRedisStore(rcfg RedisConfig, cfg Config, opts ...Option) (*RedisStore, error) {
	redisOpts, err := redis.ParseURL(rcfg.URL)
	if err != nil {
		redisOpts = &redis.Options{Addr: rcfg.URL}
	}
	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisStore(client, rcfg, cfg, opts...), nil
}

func newRedisStore(client *redis.Client, rcfg RedisConfig, cfg Config, opts ...Option) *RedisStore {
	if rcfg.KeyPrefix == "" {
		rcfg.KeyPrefix = "fni:gate"
	}
	if rcfg.InFlightTTL <= 0 {
		rcfg.InFlightTTL = 2 * time.Minute
	}
	o := buildOptions(opts)
	return &RedisStore{client: client, cfg: cfg, rcfg: rcfg, logger: o.logger}
}

func (s *RedisStore) key(session, part string) string {
	return fmt.Sprintf("%s:%s:%s", s.rcfg.KeyPrefix, session, part)
}

func (s *RedisStore) Begin(ctx context.Context, session string) error {
	remaining, err := s.client.PTTL(ctx, s.key(session, "cooldown")).Result()
	if err != nil {
		return fmt.Errorf("read cooldown: %w", err)
	}
	if remaining > 0 {
		return &CooldownError{Remaining: remaining, Message: s.cfg.Message()}
	}

	acquired, err := s.client.SetNX(ctx, s.key(session, "inflight"), 1, s.rcfg.InFlightTTL).Result()
	if err != nil {
		return fmt.Errorf("acquire in-flight lease: %w", err)
	}
	if !acquired {
		return ErrFetchInFlight
	}
	return nil
}

func (s *RedisStore) End(ctx context.Context, session string, outcome error) error {
	inflight := s.key(session, "inflight")
	failuresKey := s.key(session, "failures")

	if outcome == nil {
		if err := s.client.Del(ctx, inflight, failuresKey).Err(); err != nil {
			s.logger.Warn("Failed to reset gate session", "session", session, "error", err)
		}
		return nil
	}

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, inflight)
		incr = pipe.Incr(ctx, failuresKey)
		pipe.Expire(ctx, failuresKey, failuresTTL)
		return nil
	})
	if err != nil {
		s.logger.Warn("Failed to record gate failure", "session", session, "error", err)
		return outcome
	}

	failures := int(incr.Val())
	if failures < s.cfg.MaxFailures {
		return outcome
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(session, "cooldown"), failures, s.cfg.Cooldown)
		pipe.Del(ctx, failuresKey)
		return nil
	})
	if err != nil {
		s.logger.Warn("Failed to start gate cooldown", "session", session, "error", err)
		return outcome
	}

	s.logger.Warn("Gate entering cooldown",
		"session", session,
		"failures", failures,
		"cooldown", s.cfg.Cooldown.String(),
		"error", outcome)
	return &CooldownError{Remaining: s.cfg.Cooldown, Message: s.cfg.Message(), Err: outcome}
}

func (s *RedisStore) Cancel(ctx context.Context, session string) {
	if err := s.client.Del(ctx, s.key(session, "inflight")).Err(); err != nil {
		s.logger.Warn("Failed to release gate lease", "session", session, "error", err)
	}
}

func (s *RedisStore) Snapshot(ctx context.Context, session string) (Snapshot, error) {
	var snap Snapshot

	remaining, err := s.client.PTTL(ctx, s.key(session, "cooldown")).Result()
	if err != nil {
		return snap, err
	}
	if remaining > 0 {
		snap.State = Cooldown
		snap.CooldownUntil = time.Now().Add(remaining)
		snap.Failures = s.cfg.MaxFailures
		return snap, nil
	}

	failures, err := s.client.Get(ctx, s.key(session, "failures")).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return snap, err
	}
	snap.Failures = failures

	n, err := s.client.Exists(ctx, s.key(session, "inflight")).Result()
	if err != nil {
		return snap, err
	}
	if n > 0 {
		snap.State = Fetching
	}
	return snap, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
