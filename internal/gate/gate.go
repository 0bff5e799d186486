// Package gate limits how often one caller session may hit the upstream.
//
// A session is Idle, Fetching or in Cooldown. Only one fetch may be in flight
// per session; a second attempt is rejected rather than queued. After
// MaxFailures consecutive failures the session cools down and every attempt
// is rejected without a network call until the window passes, at which point
// the failure count starts over. Any success resets the count.
package gate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/anirame128/fortnite-insight-dashboard/internal/config"
	"github.com/anirame128/fortnite-insight-dashboard/internal/logging"
)

// State of one session
type State int

const (
	Idle State = iota
	Fetching
	Cooldown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Cooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

var (
	// ErrCoolingDown is matched by every *CooldownError
	ErrCoolingDown = errors.New("cooling down after repeated failures")
	// ErrFetchInFlight rejects a fetch while another one runs in the same session
	ErrFetchInFlight = errors.New("a fetch is already in progress")
)

// CooldownError reports a rejection (or the failure that started the
// cooldown, in which case Err is that failure).
type CooldownError struct {
	Remaining time.Duration
	Message   string
	Err       error
}

func (e *CooldownError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CooldownError) Unwrap() error {
	return e.Err
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrCoolingDown
}

// RetryAfterSeconds rounds Remaining up to whole seconds, at least 1
func (e *CooldownError) RetryAfterSeconds() int {
	s := int(math.Ceil(e.Remaining.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// Config holds the gate thresholds
type Config struct {
	MaxFailures int
	Cooldown    time.Duration
}

// DefaultConfig returns 3 failures / 30 seconds
func DefaultConfig() Config {
	return Config{MaxFailures: 3, Cooldown: 30 * time.Second}
}

// ConfigFrom extracts the thresholds from the service configuration
func ConfigFrom(cfg config.GateConfig) Config {
	c := Config{MaxFailures: cfg.MaxFailures, Cooldown: cfg.Cooldown}
	d := DefaultConfig()
	if c.MaxFailures <= 0 {
		c.MaxFailures = d.MaxFailures
	}
	if c.Cooldown <= 0 {
		c.Cooldown = d.Cooldown
	}
	return c
}

// Message is the user-facing cooldown text
func (c Config) Message() string {
	return fmt.Sprintf("Multiple failed attempts. Please wait %d s before retrying.", int(c.Cooldown.Seconds()))
}

// Clock returns the current time
type Clock func() time.Time

// Option configures a Gate or a Store
type Option func(*options)

type options struct {
	clock  Clock
	logger *logging.Logger
}

// WithClock overrides time.Now
func WithClock(clock Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithLogger sets the logger used for state transitions
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(opts []Option) options {
	o := options{clock: time.Now, logger: logging.Global()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Global()
	}
	return o
}

// Snapshot is a point-in-time view of a session
type Snapshot struct {
	State         State     `json:"state"`
	Failures      int       `json:"failures"`
	CooldownUntil time.Time `json:"cooldown_until,omitempty"`
}

// Gate is the state machine of one session. It is safe for concurrent use.
type Gate struct {
	cfg    Config
	clock  Clock
	logger *logging.Logger

	mu            sync.Mutex
	state         State
	failures      int
	cooldownUntil time.Time
	lastUsed      time.Time
}

// New creates an idle Gate
func New(cfg Config, opts ...Option) *Gate {
	o := buildOptions(opts)
	return &Gate{
		cfg:      cfg,
		clock:    o.clock,
		logger:   o.logger,
		state:    Idle,
		lastUsed: o.clock(),
	}
}

// expireLocked leaves Cooldown once the window has passed
func (g *Gate) expireLocked(now time.Time) {
	if g.state == Cooldown && !now.Before(g.cooldownUntil) {
		g.state = Idle
		g.failures = 0
		g.cooldownUntil = time.Time{}
		g.logger.Debug("Gate cooldown expired")
	}
}

// Begin moves Idle to Fetching, or rejects the attempt
func (g *Gate) Begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock()
	g.lastUsed = now
	g.expireLocked(now)

	switch g.state {
	case Fetching:
		return ErrFetchInFlight
	case Cooldown:
		return &CooldownError{Remaining: g.cooldownUntil.Sub(now), Message: g.cfg.Message()}
	}

	g.state = Fetching
	return nil
}

// End records the outcome of the fetch started by Begin. A nil err resets the
// failure count. The failure that reaches MaxFailures is returned wrapped in
// a *CooldownError; other errors are returned unchanged.
func (g *Gate) End(err error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock()
	g.lastUsed = now

	if err == nil {
		g.state = Idle
		g.failures = 0
		return nil
	}

	g.failures++
	if g.failures < g.cfg.MaxFailures {
		g.state = Idle
		g.logger.Debug("Gate recorded failure", "failures", g.failures, "error", err)
		return err
	}

	g.state = Cooldown
	g.cooldownUntil = now.Add(g.cfg.Cooldown)
	g.logger.Warn("Gate entering cooldown",
		"failures", g.failures,
		"cooldown", g.cfg.Cooldown.String(),
		"error", err)
	return &CooldownError{Remaining: g.cfg.Cooldown, Message: g.cfg.Message(), Err: err}
}

// Cancel returns Fetching to Idle without counting an outcome
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Fetching {
		g.state = Idle
	}
}

// Do runs op between Begin and End
func (g *Gate) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if err := g.Begin(); err != nil {
		return err
	}
	return g.End(op(ctx))
}

// Snapshot returns the current state, applying cooldown expiry first
func (g *Gate) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expireLocked(g.clock())
	return Snapshot{State: g.state, Failures: g.failures, CooldownUntil: g.cooldownUntil}
}

// State returns the current state
func (g *Gate) State() State {
	return g.Snapshot().State
}

// idleSince reports whether the gate is Idle and unused since t
func (g *Gate) idleSince(t time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expireLocked(g.clock())
	return g.state == Idle && g.failures == 0 && g.lastUsed.Before(t)
}
