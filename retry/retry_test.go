package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerdb/ledger-go-sdk/internal/backoff"
	"github.com/ledgerdb/ledger-go-sdk/internal/xerrors"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	require.Equal(t, DefaultMaxRetries, p.MaxRetries)
	require.NotNil(t, p.Backoff)
}

func TestNewPolicyOptions(t *testing.T) {
	custom := BackoffStrategyFunc(func(Context) time.Duration {
		return 42 * time.Millisecond
	})
	p := NewPolicy(WithMaxRetries(7), WithBackoff(custom))
	require.Equal(t, 7, p.MaxRetries)
	require.Equal(t, 42*time.Millisecond, p.Strategy().Delay(Context{}))
}

func TestStrategyFallsBackToDefault(t *testing.T) {
	p := Policy{MaxRetries: 1}
	require.NotNil(t, p.Strategy())
}

func TestExponentialBackoffSelectsCurveFromError(t *testing.T) {
	fixed := func(d time.Duration) backoff.Backoff {
		return backoff.New(
			backoff.WithSlotDuration(d),
			backoff.WithCeiling(1),
			backoff.WithJitterLimit(1),
		)
	}
	strategy := NewExponentialBackoff(
		WithFastBackoff(fixed(time.Millisecond)),
		WithSlowBackoff(fixed(time.Second)),
	)

	slow := xerrors.Retryable(errors.New("capacity"), xerrors.WithBackoff(backoff.TypeSlow))
	fast := xerrors.Retryable(errors.New("conflict"), xerrors.WithBackoff(backoff.TypeFast))
	none := xerrors.Retryable(errors.New("now"), xerrors.WithBackoff(backoff.TypeNoBackoff))

	require.Equal(t, time.Second, strategy.Delay(Context{RetriesAttempted: 0, LastErr: slow}))
	require.Equal(t, time.Millisecond, strategy.Delay(Context{RetriesAttempted: 0, LastErr: fast}))
	require.Equal(t, time.Duration(0), strategy.Delay(Context{RetriesAttempted: 0, LastErr: none}))

	// an unclassified error takes the fast curve
	require.Equal(t, time.Millisecond, strategy.Delay(Context{LastErr: errors.New("boom")}))
}
