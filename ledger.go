package ledger

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/ledgerdb/ledger-go-sdk/internal/pool"
	"github.com/ledgerdb/ledger-go-sdk/internal/retryer"
	"github.com/ledgerdb/ledger-go-sdk/internal/session"
	"github.com/ledgerdb/ledger-go-sdk/internal/stack"
	"github.com/ledgerdb/ledger-go-sdk/internal/value"
	"github.com/ledgerdb/ledger-go-sdk/internal/xerrors"
	"github.com/ledgerdb/ledger-go-sdk/trace"
)

const tableNamesStatement = "SELECT VALUE name FROM information_schema.user_tables WHERE status = 'ACTIVE'"

var (
	errLedgerNameRequired = errors.New("ledger name is required")
	errTransportRequired  = errors.New("transport is required")
)

// Driver is the top-level entry point. It is safe for use by multiple
// goroutines simultaneously.
type Driver struct {
	config  *config
	pool    *pool.Pool
	retryer *retryer.Retryer

	closed atomic.Bool
}

// New assembles a driver from options. WithLedgerName and WithTransport are
// required; everything else has defaults.
func New(ctx context.Context, opts ...Option) (*Driver, error) {
	c := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.ledgerName == "" {
		return nil, xerrors.WithStackTrace(errLedgerNameRequired)
	}
	if c.transport == nil {
		return nil, xerrors.WithStackTrace(errTransportRequired)
	}

	factory := func(ctx context.Context) (*session.Session, error) {
		return session.New(ctx, c.transport, c.ledgerName, c.sessionTrace)
	}
	p := pool.New(
		pool.WithLimit(c.maxConcurrentTransactions),
		pool.WithAcquireTimeout(c.poolAcquireTimeout),
		pool.WithFactory(factory),
		pool.WithTrace(c.poolTrace),
		pool.WithClock(c.clock),
	)

	return &Driver{
		config: c,
		pool:   p,
		retryer: retryer.New(p,
			retryer.WithClock(c.clock),
			retryer.WithTrace(c.retryTrace),
		),
	}, nil
}

// Execute runs fn inside a transaction, committing when fn returns without
// error and replaying per the retry policy when a retriable failure occurs.
// fn may therefore run more than once. The returned value is whatever fn
// returned on the committed attempt.
func (d *Driver) Execute(ctx context.Context, fn TxFunc, opts ...ExecuteOption) (_ interface{}, finalErr error) {
	var attempts int
	onDone := d.traceOnExecute(&ctx)
	defer func() {
		if onDone != nil {
			onDone(trace.DriverExecuteDoneInfo{
				Attempts: attempts,
				Error:    finalErr,
			})
		}
	}()

	if d.closed.Load() {
		return nil, xerrors.WithStackTrace(ErrDriverClosed)
	}

	execOpts := executeOptions{
		policy: d.config.retryPolicy,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&execOpts)
		}
	}

	v, attempts, err := d.retryer.Execute(ctx, execOpts.policy, func(ctx context.Context, tx *session.Transaction) (interface{}, error) {
		return fn(ctx, &txnExecutor{tx: tx})
	})
	if err != nil {
		return nil, err
	}

	return v, nil
}

// ListTableNames returns the names of all active tables of the ledger, in
// server-defined order.
func (d *Driver) ListTableNames(ctx context.Context) (_ []string, finalErr error) {
	var names []string
	onDone := d.traceOnListTableNames(&ctx)
	defer func() {
		if onDone != nil {
			onDone(trace.DriverListTableNamesDoneInfo{
				Tables: names,
				Error:  finalErr,
			})
		}
	}()

	v, err := d.Execute(ctx, func(ctx context.Context, txn Txn) (interface{}, error) {
		res, err := txn.Execute(ctx, tableNamesStatement)
		if err != nil {
			return nil, err
		}
		buffered, err := res.Buffer(ctx)
		if err != nil {
			return nil, err
		}
		tables := make([]string, 0, len(buffered.Values()))
		for _, doc := range buffered.Values() {
			name, err := value.UnmarshalString(doc)
			if err != nil {
				return nil, xerrors.WithStackTrace(err)
			}
			tables = append(tables, name)
		}

		return tables, nil
	})
	if err != nil {
		return nil, err
	}
	names = v.([]string)

	return names, nil
}

// Close shuts the driver down: all idle sessions are ended and further
// operations fail with ErrDriverClosed. Idempotent.
func (d *Driver) Close(ctx context.Context) (finalErr error) {
	onDone := d.traceOnClose(&ctx)
	defer func() {
		if onDone != nil {
			onDone(trace.DriverCloseDoneInfo{Error: finalErr})
		}
	}()

	if d.closed.Swap(true) {
		return nil
	}
	if err := d.pool.Close(ctx); err != nil {
		return err
	}

	return nil
}

func (d *Driver) traceOnExecute(ctx *context.Context) func(trace.DriverExecuteDoneInfo) {
	if d.config.driverTrace.OnExecute == nil {
		return nil
	}

	return d.config.driverTrace.OnExecute(trace.DriverExecuteStartInfo{
		Context: ctx,
		Call:    stack.FunctionID(""),
	})
}

func (d *Driver) traceOnListTableNames(ctx *context.Context) func(trace.DriverListTableNamesDoneInfo) {
	if d.config.driverTrace.OnListTableNames == nil {
		return nil
	}

	return d.config.driverTrace.OnListTableNames(trace.DriverListTableNamesStartInfo{
		Context: ctx,
		Call:    stack.FunctionID(""),
	})
}

func (d *Driver) traceOnClose(ctx *context.Context) func(trace.DriverCloseDoneInfo) {
	if d.config.driverTrace.OnClose == nil {
		return nil
	}

	return d.config.driverTrace.OnClose(trace.DriverCloseStartInfo{
		Context: ctx,
		Call:    stack.FunctionID(""),
	})
}
