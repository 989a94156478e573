// Package pool implements the bounded session pool: a permit semaphore
// governing admission and a queue of idle sessions. The semaphore and the
// queue are deliberately separate so that the fresh-session creation path
// holds a permit while no idle session exists.
package pool

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerdb/ledger-go-sdk/internal/session"
	"github.com/ledgerdb/ledger-go-sdk/internal/stack"
	"github.com/ledgerdb/ledger-go-sdk/internal/xcontext"
	"github.com/ledgerdb/ledger-go-sdk/internal/xerrors"
	"github.com/ledgerdb/ledger-go-sdk/internal/xsync"
	"github.com/ledgerdb/ledger-go-sdk/trace"
)

// Factory opens a new session. Represented as a value so the pool is
// testable without a real transport.
type Factory func(ctx context.Context) (*session.Session, error)

type config struct {
	limit          int
	acquireTimeout time.Duration
	closeTimeout   time.Duration
	factory        Factory
	trace          *trace.Pool
	clock          clockwork.Clock
}

type option func(c *config)

// WithLimit sets the maximum number of concurrently held sessions. Zero
// selects DefaultLimit.
func WithLimit(limit int) option {
	return func(c *config) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithAcquireTimeout bounds the wait for a permit.
func WithAcquireTimeout(t time.Duration) option {
	return func(c *config) {
		if t > 0 {
			c.acquireTimeout = t
		}
	}
}

// WithCloseTimeout bounds best-effort session teardown.
func WithCloseTimeout(t time.Duration) option {
	return func(c *config) {
		if t > 0 {
			c.closeTimeout = t
		}
	}
}

// WithFactory sets the session factory. Required.
func WithFactory(f Factory) option {
	return func(c *config) {
		c.factory = f
	}
}

// WithTrace sets the pool trace hooks.
func WithTrace(t *trace.Pool) option {
	return func(c *config) {
		if t != nil {
			c.trace = t
		}
	}
}

// WithClock replaces the wall clock used for the acquire timeout.
func WithClock(clock clockwork.Clock) option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// Pool is safe for use by multiple goroutines simultaneously.
type Pool struct {
	config config

	sema chan struct{}

	mu   xsync.Mutex
	idle []*session.Session

	done      chan struct{}
	closeOnce sync.Once
}

// Stats is a point-in-time snapshot of the pool.
type Stats struct {
	Limit int
	Idle  int
}

func New(opts ...option) *Pool {
	p := &Pool{
		config: config{
			limit:          DefaultLimit,
			acquireTimeout: DefaultAcquireTimeout,
			closeTimeout:   DefaultCloseTimeout,
			trace:          &trace.Pool{},
			clock:          clockwork.NewRealClock(),
		},
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&p.config)
		}
	}
	p.sema = make(chan struct{}, p.config.limit)
	p.idle = make([]*session.Session, 0, p.config.limit)

	return p
}

func (p *Pool) Stats() Stats {
	return xsync.WithLock(&p.mu, func() Stats {
		return Stats{
			Limit: p.config.limit,
			Idle:  len(p.idle),
		}
	})
}

func (p *Pool) onChange() {
	if p.config.trace.OnChange == nil {
		return
	}
	stats := p.Stats()
	p.config.trace.OnChange(trace.PoolChangeInfo{
		Limit: stats.Limit,
		Idle:  stats.Idle,
	})
}

// Acquire takes a permit and hands out a session: an idle one when present,
// a fresh one from the factory otherwise. The permit stays with the caller
// until Release. Saturation fails with ErrExhausted within the acquire
// timeout; a closed pool fails with ErrClosed; a factory failure releases
// the permit and is surfaced in a retriable envelope.
func (p *Pool) Acquire(ctx context.Context) (_ *session.Session, finalErr error) {
	onDone := p.traceOnGet(&ctx)
	var (
		s      *session.Session
		reused bool
	)
	defer func() {
		if onDone != nil {
			info := trace.PoolGetDoneInfo{
				Reused: reused,
				Error:  finalErr,
			}
			if s != nil {
				info.SessionID = s.ID()
			}
			onDone(info)
		}
	}()

	if err := p.takePermit(ctx); err != nil {
		return nil, err
	}
	defer p.onChange()

	for {
		s = p.takeIdle()
		if s == nil {
			break
		}
		if s.IsAlive() {
			reused = true

			return s, nil
		}
		p.closeAsync(ctx, s)
	}

	s, err := p.config.factory(ctx)
	if err != nil {
		p.releasePermit()

		if xerrors.RetryableError(err) != nil {
			return nil, err
		}

		return nil, xerrors.WithStackTrace(xerrors.Retryable(err,
			xerrors.WithName("SESSION_CREATE"),
			xerrors.WithDeadSession(),
		))
	}

	return s, nil
}

func (p *Pool) takePermit(ctx context.Context) error {
	select {
	case <-p.done:
		return xerrors.WithStackTrace(ErrClosed)
	default:
	}

	timer := p.config.clock.NewTimer(p.config.acquireTimeout)
	defer timer.Stop()

	select {
	case p.sema <- struct{}{}:
		// Re-check: Close may have raced the permit.
		select {
		case <-p.done:
			p.releasePermit()

			return xerrors.WithStackTrace(ErrClosed)
		default:
			return nil
		}
	case <-p.done:
		return xerrors.WithStackTrace(ErrClosed)
	case <-ctx.Done():
		return xerrors.WithStackTrace(ctx.Err())
	case <-timer.Chan():
		return xerrors.WithStackTrace(ErrExhausted)
	}
}

func (p *Pool) releasePermit() {
	<-p.sema
}

func (p *Pool) takeIdle() (s *session.Session) {
	return xsync.WithLock(&p.mu, func() *session.Session {
		if len(p.idle) == 0 {
			return nil
		}
		var s *session.Session
		s, p.idle = p.idle[0], p.idle[1:]

		return s
	})
}

// Release returns the session to the idle queue when it is alive and the
// pool is open, ends it best-effort otherwise. The permit is released
// exactly once on every path.
func (p *Pool) Release(ctx context.Context, s *session.Session, alive bool) (finalErr error) {
	onDone := p.traceOnPut(&ctx, alive)
	defer func() {
		if onDone != nil {
			onDone(trace.PoolPutDoneInfo{Error: finalErr})
		}
	}()
	defer p.onChange()
	defer p.releasePermit()

	if !alive || !s.IsAlive() {
		p.closeAsync(ctx, s)

		return nil
	}

	select {
	case <-p.done:
		p.closeAsync(ctx, s)

		return xerrors.WithStackTrace(ErrClosed)
	default:
	}

	appended := xsync.WithLock(&p.mu, func() bool {
		if len(p.idle) >= p.config.limit {
			return false
		}
		p.idle = append(p.idle, s)

		return true
	})
	if !appended {
		p.closeAsync(ctx, s)
	}

	return nil
}

// closeAsync ends the session without blocking the caller and without
// inheriting the caller's cancellation: teardown must still reach the wire
// when the triggering call is already cancelled or the pool is closing.
func (p *Pool) closeAsync(ctx context.Context, s *session.Session) {
	closeCtx, cancel := context.WithTimeout(xcontext.ValueOnly(ctx), p.config.closeTimeout)
	go func() {
		defer cancel()
		_ = s.Close(closeCtx)
	}()
}

// Close drains the idle queue, ending each session, and fails all further
// acquires. Checked-out sessions are not force-closed; they are discarded
// on release.
func (p *Pool) Close(ctx context.Context) (finalErr error) {
	onDone := p.traceOnClose(&ctx)
	defer func() {
		if onDone != nil {
			onDone(trace.PoolCloseDoneInfo{Error: finalErr})
		}
	}()

	closed := false
	p.closeOnce.Do(func() {
		closed = true
	})
	if !closed {
		return nil
	}
	close(p.done)

	idle := xsync.WithLock(&p.mu, func() []*session.Session {
		idle := p.idle
		p.idle = nil

		return idle
	})

	closeCtx, cancel := context.WithTimeout(xcontext.ValueOnly(ctx), p.config.closeTimeout)
	defer cancel()

	g, gCtx := errgroup.WithContext(closeCtx)
	for _, s := range idle {
		s := s
		g.Go(func() error {
			return s.Close(gCtx)
		})
	}
	if err := g.Wait(); err != nil {
		return xerrors.WithStackTrace(err)
	}

	return nil
}

func (p *Pool) traceOnGet(ctx *context.Context) func(trace.PoolGetDoneInfo) {
	if p.config.trace.OnGet == nil {
		return nil
	}

	return p.config.trace.OnGet(trace.PoolGetStartInfo{
		Context: ctx,
		Call:    stack.FunctionID(""),
	})
}

func (p *Pool) traceOnPut(ctx *context.Context, alive bool) func(trace.PoolPutDoneInfo) {
	if p.config.trace.OnPut == nil {
		return nil
	}

	return p.config.trace.OnPut(trace.PoolPutStartInfo{
		Context: ctx,
		Call:    stack.FunctionID(""),
		Alive:   alive,
	})
}

func (p *Pool) traceOnClose(ctx *context.Context) func(trace.PoolCloseDoneInfo) {
	if p.config.trace.OnClose == nil {
		return nil
	}

	return p.config.trace.OnClose(trace.PoolCloseStartInfo{
		Context: ctx,
		Call:    stack.FunctionID(""),
	})
}
