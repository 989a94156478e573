// Package retry holds the user-facing retry policy of the driver: how many
// times a transaction is replayed and how long to back off between replays.
package retry

import (
	"time"

	"github.com/ledgerdb/ledger-go-sdk/internal/backoff"
	"github.com/ledgerdb/ledger-go-sdk/internal/xerrors"
)

// DefaultMaxRetries bounds transaction replays when the caller did not
// supply a policy.
const DefaultMaxRetries = 4

// Context describes one failed attempt to the backoff strategy.
type Context struct {
	// RetriesAttempted counts the retries performed so far, starting at 1
	// for the first replay.
	RetriesAttempted int

	// LastErr is the classified error of the failed attempt.
	LastErr error
}

// BackoffStrategy maps a failed attempt to the delay before the next one.
// Implementations must be pure: no I/O, no sleeping of their own.
type BackoffStrategy interface {
	Delay(ctx Context) time.Duration
}

// BackoffStrategyFunc adapts a function to BackoffStrategy.
type BackoffStrategyFunc func(ctx Context) time.Duration

func (f BackoffStrategyFunc) Delay(ctx Context) time.Duration {
	return f(ctx)
}

// Policy bounds the retry loop of one Execute call.
type Policy struct {
	// MaxRetries is the number of replays allowed after the first attempt.
	// Zero disables retries (the first-attempt invalid-session grace replay
	// is still performed).
	MaxRetries int

	// Backoff produces the delay before each replay. Nil means the default
	// exponential jittered backoff.
	Backoff BackoffStrategy
}

type policyOption func(p *Policy)

// WithMaxRetries sets the replay budget.
func WithMaxRetries(n int) policyOption {
	return func(p *Policy) {
		p.MaxRetries = n
	}
}

// WithBackoff replaces the default backoff strategy.
func WithBackoff(b BackoffStrategy) policyOption {
	return func(p *Policy) {
		p.Backoff = b
	}
}

// NewPolicy constructs a policy with the driver defaults applied.
func NewPolicy(opts ...policyOption) Policy {
	p := Policy{
		MaxRetries: DefaultMaxRetries,
		Backoff:    NewExponentialBackoff(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&p)
		}
	}

	return p
}

// DefaultPolicy is the policy used when Execute is called without one.
func DefaultPolicy() Policy {
	return NewPolicy()
}

// Strategy returns the configured backoff, falling back to the default.
func (p Policy) Strategy() BackoffStrategy {
	if p.Backoff != nil {
		return p.Backoff
	}

	return NewExponentialBackoff()
}

var _ BackoffStrategy = (*exponentialBackoff)(nil)

// exponentialBackoff scales a jittered exponential curve, choosing the slow
// curve for capacity rejections and the fast one for everything else, as
// recorded on the classified error.
type exponentialBackoff struct {
	fast backoff.Backoff
	slow backoff.Backoff
}

type exponentialBackoffOption func(b *exponentialBackoff)

// WithFastBackoff replaces the curve used for transient failures.
func WithFastBackoff(b backoff.Backoff) exponentialBackoffOption {
	return func(eb *exponentialBackoff) {
		eb.fast = b
	}
}

// WithSlowBackoff replaces the curve used for capacity rejections.
func WithSlowBackoff(b backoff.Backoff) exponentialBackoffOption {
	return func(eb *exponentialBackoff) {
		eb.slow = b
	}
}

// NewExponentialBackoff returns the default jittered exponential strategy.
func NewExponentialBackoff(opts ...exponentialBackoffOption) BackoffStrategy {
	b := &exponentialBackoff{
		fast: backoff.Fast,
		slow: backoff.Slow,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	return b
}

func (b *exponentialBackoff) Delay(ctx Context) time.Duration {
	t := backoff.TypeFast
	if re := xerrors.RetryableError(ctx.LastErr); re != nil {
		t = re.BackoffType()
	}
	switch t {
	case backoff.TypeNoBackoff:
		return 0
	case backoff.TypeSlow:
		return b.slow.Delay(ctx.RetriesAttempted)
	default:
		return b.fast.Delay(ctx.RetriesAttempted)
	}
}
