package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// ErrBreakerOpen is returned when a call is refused because the upstream
// breaker is open.
var ErrBreakerOpen = eris.New("resilience: breaker open")

// BreakerState is the position of a circuit breaker.
type BreakerState int

const (
	// BreakerClosed is the normal state; calls flow through.
	BreakerClosed BreakerState = iota
	// BreakerOpen refuses calls immediately after repeated failures.
	BreakerOpen
	// BreakerHalfOpen lets probe calls through to test recovery.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig controls when a Breaker opens and how it recovers.
type BreakerConfig struct {
	// Threshold is the consecutive-failure count that opens the breaker.
	// Default: 5.
	Threshold int

	// Cooldown is how long an open breaker refuses calls before allowing
	// a probe. Default: 30s.
	Cooldown time.Duration

	// Probes is how many successful half-open calls close the breaker.
	// Default: 1.
	Probes int

	// ShouldTrip decides which errors count toward Threshold; nil counts
	// every error.
	ShouldTrip func(err error) bool

	// OnStateChange observes transitions.
	OnStateChange func(from, to BreakerState)
}

// DefaultBreakerConfig returns defaults tuned for a rate-limited geocoding
// API: open fast, probe after half a minute.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Threshold: 5,
		Cooldown:  30 * time.Second,
		Probes:    1,
	}
}

// Breaker fails fast while the upstream keeps failing, giving a struggling
// geocoding API room to recover instead of hammering it with doomed calls.
type Breaker struct {
	cfg BreakerConfig

	mu       sync.Mutex
	state    BreakerState
	failures int
	probeOKs int
	openedAt time.Time

	// now allows test injection of time.
	now func() time.Time
}

// NewBreaker returns a closed Breaker with cfg's zero fields defaulted.
func NewBreaker(cfg BreakerConfig) *Breaker {
	def := DefaultBreakerConfig()
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if cfg.Probes <= 0 {
		cfg.Probes = def.Probes
	}
	return &Breaker{cfg: cfg, state: BreakerClosed, now: time.Now}
}

// Run executes fn if the breaker admits it and feeds the outcome back.
// Refused calls fail with ErrBreakerOpen without invoking fn.
func (b *Breaker) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err)
	return err
}

// Call is Run for callables that produce a value.
func Call[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := b.admit(); err != nil {
		return zero, err
	}
	val, err := fn(ctx)
	b.record(err)
	return val, err
}

// State reports the effective state, surfacing half-open once an open
// breaker's cooldown has elapsed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.cfg.Cooldown {
		return BreakerHalfOpen
	}
	return b.state
}

// Reset forces the breaker closed. Used by tests and manual recovery.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	from := b.state
	b.state = BreakerClosed
	b.failures = 0
	b.probeOKs = 0
	if from != BreakerClosed && b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(from, BreakerClosed)
	}
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			return ErrBreakerOpen
		}
		b.shift(BreakerHalfOpen)
		return nil
	default:
		// Closed and half-open both admit; half-open calls are probes.
		return nil
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	counts := err != nil
	if counts && b.cfg.ShouldTrip != nil {
		counts = b.cfg.ShouldTrip(err)
	}

	if !counts {
		switch b.state {
		case BreakerHalfOpen:
			b.probeOKs++
			if b.probeOKs >= b.cfg.Probes {
				b.shift(BreakerClosed)
				b.failures = 0
				b.probeOKs = 0
			}
		case BreakerClosed:
			b.failures = 0
		}
		return
	}

	b.failures++
	switch b.state {
	case BreakerClosed:
		if b.failures >= b.cfg.Threshold {
			b.openedAt = b.now()
			b.shift(BreakerOpen)
		}
	case BreakerHalfOpen:
		// Any failed probe reopens the breaker for a full cooldown.
		b.openedAt = b.now()
		b.probeOKs = 0
		b.shift(BreakerOpen)
	}
}

func (b *Breaker) shift(to BreakerState) {
	from := b.state
	b.state = to
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(from, to)
	}
}
