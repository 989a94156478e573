package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/ledgerdb/ledger-go-sdk/internal/qhash"
	"github.com/ledgerdb/ledger-go-sdk/internal/result"
	"github.com/ledgerdb/ledger-go-sdk/internal/value"
	"github.com/ledgerdb/ledger-go-sdk/internal/xerrors"
	"github.com/ledgerdb/ledger-go-sdk/internal/xsync"
)

// Status of a transaction. Outside Open the transaction rejects Execute and
// Commit; Abort is still accepted from Errored.
type Status int

const (
	Open = Status(iota)
	Committed
	Aborted
	Errored
)

func (s Status) String() string {
	switch s {
	case Open:
		return "open"
	case Committed:
		return "committed"
	case Aborted:
		return "aborted"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// ErrTransactionClosed is returned on operations against a transaction in a
// terminal state. This is a programming error, never retried.
var ErrTransactionClosed = errors.New("transaction is closed")

// Transaction is the state machine around one server-side transaction. It is
// owned by its session and must not be used concurrently.
type Transaction struct {
	session *Session
	id      string
	digest  *qhash.Digest

	mu     xsync.Mutex
	status Status
}

// BeginTransaction starts a transaction on the session and seeds the commit
// digest with the server-issued transaction id.
func (s *Session) BeginTransaction(ctx context.Context) (*Transaction, error) {
	id, err := s.StartTransaction(ctx)
	if err != nil {
		return nil, err
	}

	return &Transaction{
		session: s,
		id:      id,
		digest:  qhash.New(id),
	}, nil
}

// ID is the server-issued transaction id.
func (tx *Transaction) ID() string {
	return tx.id
}

// Status returns the current state of the transaction.
func (tx *Transaction) Status() Status {
	return xsync.WithLock(&tx.mu, func() Status {
		return tx.status
	})
}

func (tx *Transaction) transition(from, to Status) error {
	return xsync.WithLock(&tx.mu, func() error {
		if tx.status != from {
			return fmt.Errorf("%w: %s", ErrTransactionClosed, tx.status)
		}
		tx.status = to

		return nil
	})
}

// Execute runs one statement. Parameters are encoded to binary Ion; the
// digest is folded after the server acknowledged the statement, so it
// reflects statements in the order execute returned.
func (tx *Transaction) Execute(ctx context.Context, statement string, parameters ...interface{}) (*result.Stream, error) {
	if st := tx.Status(); st != Open {
		return nil, xerrors.WithStackTrace(fmt.Errorf("%w: %s", ErrTransactionClosed, st))
	}
	params, err := value.MarshalAll(parameters...)
	if err != nil {
		_ = tx.transition(Open, Errored)

		return nil, xerrors.WithStackTrace(xerrors.Transaction(err, tx.id, true))
	}
	res, err := tx.session.ExecuteStatement(ctx, tx.id, statement, params)
	if err != nil {
		_ = tx.transition(Open, Errored)

		return nil, err
	}
	tx.digest.Update(statement, params)

	return result.NewStream(tx.session, tx.id, res.FirstPage, res.ConsumedIOs, res.TimingInformation), nil
}

// Commit transmits the accumulated digest and verifies the echo. A digest
// disagreement is an integrity failure and is never retried. Cancellation
// during the commit exchange leaves the outcome unknown server-side and is
// surfaced as ErrCommitIndeterminate.
func (tx *Transaction) Commit(ctx context.Context) error {
	if st := tx.Status(); st != Open {
		return xerrors.WithStackTrace(fmt.Errorf("%w: %s", ErrTransactionClosed, st))
	}
	localDigest := tx.digest.Sum()
	res, err := tx.session.CommitTransaction(ctx, tx.id, localDigest)
	if err != nil {
		_ = tx.transition(Open, Errored)
		if xerrors.IsContextError(err) {
			tx.session.SetDead()

			return xerrors.WithStackTrace(xerrors.Transaction(
				fmt.Errorf("%w: %w", xerrors.ErrCommitIndeterminate, err), tx.id, false,
			))
		}

		return err
	}
	if !tx.digest.Equal(res.CommitDigest) {
		_ = tx.transition(Open, Errored)

		return xerrors.WithStackTrace(xerrors.Transaction(&xerrors.DigestMismatchError{
			TransactionID: tx.id,
			Client:        localDigest,
			Server:        res.CommitDigest,
		}, tx.id, true))
	}

	return tx.transition(Open, Committed)
}

// Abort rolls the transaction back. Valid from Open or Errored; abort
// failures are swallowed after marking the session dead.
func (tx *Transaction) Abort(ctx context.Context) error {
	aborted := xsync.WithLock(&tx.mu, func() bool {
		if tx.status != Open && tx.status != Errored {
			return false
		}
		tx.status = Aborted

		return true
	})
	if !aborted {
		return xerrors.WithStackTrace(fmt.Errorf("%w: %s", ErrTransactionClosed, tx.Status()))
	}
	if err := tx.session.AbortTransaction(ctx); err != nil {
		tx.session.SetDead()

		return nil //nolint:nilerr
	}

	return nil
}
