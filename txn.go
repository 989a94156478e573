package ledger

import (
	"context"

	"github.com/ledgerdb/ledger-go-sdk/internal/session"
	"github.com/ledgerdb/ledger-go-sdk/internal/xerrors"
)

// Txn is the restricted transaction view handed to the Execute function: it
// permits executing statements and aborting, never committing. Commit is
// the driver's decision, taken when the function returns without error.
type Txn interface {
	// ID is the server-issued transaction id.
	ID() string

	// Execute runs one PartiQL statement. Parameters are encoded to binary
	// Ion; values already encoded pass through unchanged.
	Execute(ctx context.Context, statement string, parameters ...interface{}) (Result, error)

	// Abort rolls the transaction back and returns ErrTransactionAborted
	// for the transaction function to propagate. No retry follows.
	Abort(ctx context.Context) error
}

// TxFunc is the unit of work executed inside a transaction. It may run more
// than once when the driver replays the transaction.
type TxFunc func(ctx context.Context, txn Txn) (interface{}, error)

var _ Txn = (*txnExecutor)(nil)

type txnExecutor struct {
	tx *session.Transaction
}

func (e *txnExecutor) ID() string {
	return e.tx.ID()
}

func (e *txnExecutor) Execute(ctx context.Context, statement string, parameters ...interface{}) (Result, error) {
	res, err := e.tx.Execute(ctx, statement, parameters...)
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (e *txnExecutor) Abort(ctx context.Context) error {
	_ = e.tx.Abort(ctx)

	return xerrors.WithStackTrace(xerrors.ErrTransactionAborted)
}
