package ledger

import (
	"errors"

	"github.com/ledgerdb/ledger-go-sdk/internal/pool"
	"github.com/ledgerdb/ledger-go-sdk/internal/result"
	"github.com/ledgerdb/ledger-go-sdk/internal/xerrors"
)

var (
	// ErrDriverClosed is returned by any operation on a closed driver.
	ErrDriverClosed = errors.New("driver is closed")

	// ErrSessionPoolEmpty is returned when all permits are taken and none
	// frees up within the pool acquire timeout.
	ErrSessionPoolEmpty = pool.ErrExhausted

	// ErrTransactionAborted is returned by Execute when the transaction
	// function aborted the transaction via Txn.Abort.
	ErrTransactionAborted = xerrors.ErrTransactionAborted

	// ErrCommitIndeterminate is returned when cancellation interrupted the
	// commit exchange and the outcome is unknown server-side.
	ErrCommitIndeterminate = xerrors.ErrCommitIndeterminate

	// ErrResultConsumed is returned on enumerating a result stream more
	// than once.
	ErrResultConsumed = result.ErrStreamConsumed
)

// DigestMismatchError is returned when the server's commit digest disagrees
// with the one accumulated client-side. Never retried.
type DigestMismatchError = xerrors.DigestMismatchError
