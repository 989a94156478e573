package ledger

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ledgerdb/ledger-go-sdk/log"
	"github.com/ledgerdb/ledger-go-sdk/retry"
	"github.com/ledgerdb/ledger-go-sdk/trace"
	"github.com/ledgerdb/ledger-go-sdk/wire"
)

type config struct {
	ledgerName                string
	transport                 wire.Transport
	maxConcurrentTransactions int
	retryPolicy               retry.Policy
	poolAcquireTimeout        time.Duration
	clock                     clockwork.Clock

	driverTrace  *trace.Driver
	poolTrace    *trace.Pool
	sessionTrace *trace.Session
	retryTrace   *trace.Retry
}

func defaultConfig() *config {
	return &config{
		retryPolicy:  retry.DefaultPolicy(),
		clock:        clockwork.NewRealClock(),
		driverTrace:  &trace.Driver{},
		poolTrace:    &trace.Pool{},
		sessionTrace: &trace.Session{},
		retryTrace:   &trace.Retry{},
	}
}

// Option configures the driver.
type Option func(c *config)

// WithLedgerName names the ledger every session is opened against.
// Required, non-empty.
func WithLedgerName(name string) Option {
	return func(c *config) {
		c.ledgerName = name
	}
}

// WithTransport binds the driver to a command transport. Required.
func WithTransport(t wire.Transport) Option {
	return func(c *config) {
		c.transport = t
	}
}

// WithMaxConcurrentTransactions bounds sessions held at once. Zero keeps
// the driver default limit.
func WithMaxConcurrentTransactions(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxConcurrentTransactions = n
		}
	}
}

// WithRetryPolicy replaces the default policy used by Execute calls that do
// not carry one.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *config) {
		c.retryPolicy = p
	}
}

// WithPoolAcquireTimeout bounds the wait for a session permit. The default
// is deliberately short so saturation surfaces as ErrSessionPoolEmpty
// instead of a hang.
func WithPoolAcquireTimeout(t time.Duration) Option {
	return func(c *config) {
		if t > 0 {
			c.poolAcquireTimeout = t
		}
	}
}

// WithClock replaces the wall clock used for backoff sleeps and pool
// timeouts. Intended for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger routes all trace events through l as structured log records.
func WithLogger(l log.Logger) Option {
	return func(c *config) {
		dt := log.Driver(l)
		pt := log.Pool(l)
		st := log.Session(l)
		rt := log.Retry(l)
		c.driverTrace = c.driverTrace.Compose(&dt)
		c.poolTrace = c.poolTrace.Compose(&pt)
		c.sessionTrace = c.sessionTrace.Compose(&st)
		c.retryTrace = c.retryTrace.Compose(&rt)
	}
}

// WithTraceDriver appends hooks on the facade operations.
func WithTraceDriver(t *trace.Driver) Option {
	return func(c *config) {
		c.driverTrace = c.driverTrace.Compose(t)
	}
}

// WithTracePool appends hooks on the session pool.
func WithTracePool(t *trace.Pool) Option {
	return func(c *config) {
		c.poolTrace = c.poolTrace.Compose(t)
	}
}

// WithTraceSession appends hooks on session commands.
func WithTraceSession(t *trace.Session) Option {
	return func(c *config) {
		c.sessionTrace = c.sessionTrace.Compose(t)
	}
}

// WithTraceRetry appends hooks on the retry loop.
func WithTraceRetry(t *trace.Retry) Option {
	return func(c *config) {
		c.retryTrace = c.retryTrace.Compose(t)
	}
}

type executeOptions struct {
	policy retry.Policy
}

// ExecuteOption configures one Execute call.
type ExecuteOption func(o *executeOptions)

// WithPolicy overrides the retry policy for one Execute call.
func WithPolicy(p retry.Policy) ExecuteOption {
	return func(o *executeOptions) {
		o.policy = p
	}
}
