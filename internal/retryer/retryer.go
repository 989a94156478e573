// Package retryer implements the transaction replay loop: it runs the user
// function inside a transaction, classifies failures, replays on the same
// or a fresh session according to the retry policy, and guarantees that on
// every exit path the session is either returned to the pool or discarded
// with its permit released.
package retryer

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ledgerdb/ledger-go-sdk/internal/pool"
	"github.com/ledgerdb/ledger-go-sdk/internal/session"
	"github.com/ledgerdb/ledger-go-sdk/internal/stack"
	"github.com/ledgerdb/ledger-go-sdk/internal/xerrors"
	"github.com/ledgerdb/ledger-go-sdk/retry"
	"github.com/ledgerdb/ledger-go-sdk/trace"
)

// TxFunc is the user work adapted to the internal transaction type. The
// function sees a restricted view assembled by the facade: execute and
// abort, never commit.
type TxFunc func(ctx context.Context, tx *session.Transaction) (interface{}, error)

type Retryer struct {
	pool  *pool.Pool
	clock clockwork.Clock
	trace *trace.Retry
}

type option func(r *Retryer)

// WithClock replaces the wall clock used for backoff sleeps.
func WithClock(clock clockwork.Clock) option {
	return func(r *Retryer) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithTrace sets the retry loop trace hooks.
func WithTrace(t *trace.Retry) option {
	return func(r *Retryer) {
		if t != nil {
			r.trace = t
		}
	}
}

func New(p *pool.Pool, opts ...option) *Retryer {
	r := &Retryer{
		pool:  p,
		clock: clockwork.NewRealClock(),
		trace: &trace.Retry{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

// Execute runs fn transactionally and returns its value together with the
// number of attempts performed.
func (r *Retryer) Execute(
	ctx context.Context,
	policy retry.Policy,
	fn TxFunc,
) (_ interface{}, attempts int, finalErr error) {
	onAttempt, onDone := r.traceOnRetry(&ctx)
	defer func() {
		if onDone != nil {
			onDone(trace.RetryLoopDoneInfo{
				Attempts: attempts,
				Error:    finalErr,
			})
		}
	}()

	var (
		sess    *session.Session
		retries int
	)
	for {
		attempts++

		if sess == nil {
			var err error
			sess, err = r.pool.Acquire(ctx)
			if err != nil {
				if retryErr := r.gate(err, attempts, &retries, policy); retryErr != nil {
					return nil, attempts, retryErr
				}
				backoff := r.delay(err, attempts, retries, policy)
				r.noteAttempt(onAttempt, &onDone, attempts, backoff, err)
				if backoff > 0 {
					if serr := r.sleep(ctx, backoff); serr != nil {
						return nil, attempts, xerrors.WithStackTrace(serr)
					}
				}

				continue
			}
		}

		v, err := r.attempt(ctx, sess, fn)
		if err == nil {
			_ = r.pool.Release(ctx, sess, true)
			r.noteAttempt(onAttempt, &onDone, attempts, 0, nil)

			return v, attempts, nil
		}

		alive := xerrors.SessionAliveAfter(err)

		// Terminal kinds surface immediately, session plumbed by liveness.
		if errors.Is(err, xerrors.ErrTransactionAborted) ||
			xerrors.IsContextError(err) ||
			xerrors.RetryableError(err) == nil {
			r.releaseAfterFailure(ctx, sess, alive)

			return nil, attempts, surface(err)
		}

		if retryErr := r.gate(err, attempts, &retries, policy); retryErr != nil {
			r.releaseAfterFailure(ctx, sess, alive)

			return nil, attempts, retryErr
		}

		// Replay: keep the session when it survived, otherwise discard it
		// (permit included) and acquire a fresh one next iteration.
		if !alive {
			_ = r.pool.Release(ctx, sess, false)
			sess = nil
		}

		backoff := r.delay(err, attempts, retries, policy)
		r.noteAttempt(onAttempt, &onDone, attempts, backoff, err)
		if backoff > 0 {
			if serr := r.sleep(ctx, backoff); serr != nil {
				if sess != nil {
					_ = r.pool.Release(ctx, sess, true)
				}

				return nil, attempts, xerrors.WithStackTrace(serr)
			}
		}
	}
}

// attempt runs one full transaction: begin, user function, commit. On any
// failure the transaction is aborted best-effort when the session is still
// alive.
func (r *Retryer) attempt(ctx context.Context, sess *session.Session, fn TxFunc) (interface{}, error) {
	tx, err := sess.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}

	v, err := fn(ctx, tx)

	if tx.Status() == session.Aborted || errors.Is(err, xerrors.ErrTransactionAborted) {
		if tx.Status() != session.Aborted && sess.IsAlive() {
			_ = tx.Abort(ctx)
		}

		return nil, xerrors.WithStackTrace(
			xerrors.Transaction(xerrors.ErrTransactionAborted, tx.ID(), sess.IsAlive()),
		)
	}

	if err == nil {
		if err = tx.Commit(ctx); err == nil {
			return v, nil
		}
	}

	if sess.IsAlive() {
		_ = tx.Abort(ctx)
	}

	// Errors of the user function itself carry no classification; record
	// the session liveness explicitly so the plumbing never re-derives it.
	if xerrors.RetryableError(err) == nil &&
		xerrors.TransactionError(err) == nil &&
		!xerrors.IsContextError(err) {
		err = xerrors.WithStackTrace(xerrors.Transaction(err, tx.ID(), sess.IsAlive()))
	}

	return nil, err
}

// gate decides whether another attempt is allowed, consuming the retry
// budget. The very first attempt failing with an invalid session gets one
// replay for free: the pooled session may have silently expired, and that
// replay must not count against the caller's budget.
func (r *Retryer) gate(err error, attempts int, retries *int, policy retry.Policy) error {
	re := xerrors.RetryableError(err)
	if re == nil {
		return surface(err)
	}
	if attempts == 1 && xerrors.IsInvalidSession(err) {
		return nil
	}
	if *retries >= policy.MaxRetries {
		return surface(err)
	}
	*retries++

	return nil
}

// delay computes the backoff before the next attempt. The free
// invalid-session replay goes immediately.
func (r *Retryer) delay(err error, attempts, retries int, policy retry.Policy) time.Duration {
	if attempts == 1 && retries == 0 {
		return 0
	}

	return policy.Strategy().Delay(retry.Context{
		RetriesAttempted: retries,
		LastErr:          err,
	})
}

func (r *Retryer) sleep(ctx context.Context, d time.Duration) error {
	timer := r.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.Chan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Retryer) releaseAfterFailure(ctx context.Context, sess *session.Session, alive bool) {
	_ = r.pool.Release(ctx, sess, alive)
}

// surface discards the retry envelope and hands the caller the original
// cause.
func surface(err error) error {
	if re := xerrors.RetryableError(err); re != nil {
		return xerrors.WithStackTrace(re.Unwrap())
	}
	if te := xerrors.TransactionError(err); te != nil {
		return xerrors.WithStackTrace(te.Unwrap())
	}

	return err
}

func (r *Retryer) traceOnRetry(ctx *context.Context) (
	func(trace.RetryLoopAttemptInfo) func(trace.RetryLoopDoneInfo),
	func(trace.RetryLoopDoneInfo),
) {
	if r.trace.OnRetry == nil {
		return nil, nil
	}
	onAttempt := r.trace.OnRetry(trace.RetryLoopStartInfo{
		Context: ctx,
		Call:    stack.FunctionID(""),
	})

	return onAttempt, nil
}

func (r *Retryer) noteAttempt(
	onAttempt func(trace.RetryLoopAttemptInfo) func(trace.RetryLoopDoneInfo),
	onDone *func(trace.RetryLoopDoneInfo),
	attempt int,
	backoff time.Duration,
	err error,
) {
	if onAttempt == nil {
		return
	}
	if d := onAttempt(trace.RetryLoopAttemptInfo{
		Attempt: attempt,
		Backoff: backoff,
		Error:   err,
	}); d != nil {
		*onDone = d
	}
}
