package pool

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerdb/ledger-go-sdk/internal/session"
	"github.com/ledgerdb/ledger-go-sdk/internal/xerrors"
	"github.com/ledgerdb/ledger-go-sdk/testutil"
)

func sessionFactory(transport *testutil.Transport) Factory {
	return func(ctx context.Context) (*session.Session, error) {
		return session.New(ctx, transport, "ledger", nil)
	}
}

func TestAcquireCreatesThenReusesSession(t *testing.T) {
	transport := testutil.NewTransport(
		testutil.OkStartSession("token-1", "request-1"),
	)
	p := New(
		WithLimit(1),
		WithFactory(sessionFactory(transport)),
	)
	defer func() {
		_ = p.Close(context.Background())
	}()

	s, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.Equal(t, "request-1", s.ID())
	require.NoError(t, p.Release(context.Background(), s, true))
	require.Equal(t, 1, p.Stats().Idle)

	again, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.Same(t, s, again)
	require.Equal(t, 1, transport.CountCommand("StartSession"))
	require.NoError(t, p.Release(context.Background(), again, true))
}

func TestAcquireFailsFastWhenSaturated(t *testing.T) {
	transport := testutil.NewTransport(
		testutil.OkStartSession("token-1", "request-1"),
	)
	p := New(
		WithLimit(1),
		WithAcquireTimeout(time.Millisecond),
		WithFactory(sessionFactory(transport)),
	)
	defer func() {
		_ = p.Close(context.Background())
	}()

	s, err := p.Acquire(context.Background())
	require.NoError(t, err)

	_, err = p.Acquire(context.Background())
	require.ErrorIs(t, err, ErrExhausted)

	require.NoError(t, p.Release(context.Background(), s, true))

	// the permit freed up, the session is available again
	s, err = p.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Release(context.Background(), s, true))
}

func TestDeadSessionIsNeverReturnedToPool(t *testing.T) {
	transport := testutil.NewTransport(
		testutil.OkStartSession("token-1", "request-1"),
		testutil.OkStartSession("token-2", "request-2"),
	)
	p := New(
		WithLimit(1),
		WithFactory(sessionFactory(transport)),
	)
	defer func() {
		_ = p.Close(context.Background())
	}()

	s, err := p.Acquire(context.Background())
	require.NoError(t, err)
	s.SetDead()
	require.NoError(t, p.Release(context.Background(), s, false))
	require.Equal(t, 0, p.Stats().Idle)

	fresh, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.Equal(t, "request-2", fresh.ID())
	require.NoError(t, p.Release(context.Background(), fresh, true))
}

func TestReleaseAliveFalseDiscardsSession(t *testing.T) {
	transport := testutil.NewTransport(
		testutil.OkStartSession("token-1", "request-1"),
		testutil.OkEndSession(),
	)
	p := New(
		WithLimit(1),
		WithFactory(sessionFactory(transport)),
	)
	defer func() {
		_ = p.Close(context.Background())
	}()

	s, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Release(context.Background(), s, false))
	require.Equal(t, 0, p.Stats().Idle)
	require.Eventually(t, func() bool {
		return transport.CountCommand("EndSession") == 1
	}, time.Second, time.Millisecond)
}

func TestFactoryFailureReleasesPermit(t *testing.T) {
	transport := testutil.NewTransport(
		testutil.Fail("InternalFailure", "internal", http.StatusInternalServerError),
		testutil.OkStartSession("token-1", "request-1"),
	)
	p := New(
		WithLimit(1),
		WithFactory(sessionFactory(transport)),
	)
	defer func() {
		_ = p.Close(context.Background())
	}()

	_, err := p.Acquire(context.Background())
	require.Error(t, err)
	require.NotNil(t, xerrors.RetryableError(err))

	// the permit was released: the next acquire proceeds to the factory
	s, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Release(context.Background(), s, true))
}

func TestAcquireAfterCloseFails(t *testing.T) {
	transport := testutil.NewTransport(
		testutil.OkStartSession("token-1", "request-1"),
		testutil.OkEndSession(),
	)
	p := New(
		WithLimit(1),
		WithFactory(sessionFactory(transport)),
	)

	s, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Release(context.Background(), s, true))

	require.NoError(t, p.Close(context.Background()))
	require.NoError(t, p.Close(context.Background()))

	_, err = p.Acquire(context.Background())
	require.ErrorIs(t, err, ErrClosed)
	require.Equal(t, 1, transport.CountCommand("EndSession"))
}

func TestReleaseAfterCloseDiscardsSession(t *testing.T) {
	transport := testutil.NewTransport(
		testutil.OkStartSession("token-1", "request-1"),
		testutil.OkEndSession(),
	)
	p := New(
		WithLimit(1),
		WithFactory(sessionFactory(transport)),
	)

	s, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Close(context.Background()))

	err = p.Release(context.Background(), s, true)
	require.ErrorIs(t, err, ErrClosed)
	require.Eventually(t, func() bool {
		return transport.CountCommand("EndSession") == 1
	}, time.Second, time.Millisecond)
}

func TestCheckedOutSessionsNeverExceedLimit(t *testing.T) {
	const (
		limit   = 4
		workers = 32
	)
	steps := make([]testutil.Step, 0, limit)
	for i := 0; i < limit; i++ {
		steps = append(steps, testutil.OkStartSession(
			fmt.Sprintf("token-%d", i),
			fmt.Sprintf("request-%d", i),
		))
	}
	transport := testutil.NewTransport(steps...)
	p := New(
		WithLimit(limit),
		WithAcquireTimeout(10*time.Millisecond),
		WithFactory(sessionFactory(transport)),
	)
	defer func() {
		_ = p.Close(context.Background())
	}()

	var (
		mu      sync.Mutex
		held    int
		maxHeld int
		wg      sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s, err := p.Acquire(context.Background())
				if err != nil {
					if !errors.Is(err, ErrExhausted) {
						t.Errorf("unexpected acquire error: %v", err)
					}

					continue
				}
				mu.Lock()
				held++
				if held > maxHeld {
					maxHeld = held
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				held--
				mu.Unlock()
				_ = p.Release(context.Background(), s, true)
			}
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, maxHeld, limit)
	require.LessOrEqual(t, p.Stats().Idle, limit)
}

func TestZeroLimitSelectsDefault(t *testing.T) {
	p := New(WithLimit(0))
	defer func() {
		_ = p.Close(context.Background())
	}()

	require.Equal(t, DefaultLimit, p.Stats().Limit)
}
