package xerrors

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ledgerdb/ledger-go-sdk/internal/backoff"
	"github.com/ledgerdb/ledger-go-sdk/wire"
)

var (
	// ErrTransactionAborted is surfaced when the user lambda explicitly
	// aborted the transaction.
	ErrTransactionAborted = errors.New("transaction was aborted")

	// ErrCommitIndeterminate is surfaced when cancellation interrupted the
	// commit exchange: the transaction may or may not have committed
	// server-side.
	ErrCommitIndeterminate = errors.New("transaction commit outcome is unknown")
)

// DigestMismatchError reports that the server computed a different commit
// digest than the client. Never retried.
type DigestMismatchError struct {
	TransactionID string
	Client        []byte
	Server        []byte
}

func (e *DigestMismatchError) Error() string {
	return fmt.Sprintf(
		"commit digest mismatch for transaction %q: client %s, server %s",
		e.TransactionID,
		hex.EncodeToString(e.Client),
		hex.EncodeToString(e.Server),
	)
}

// Classify wraps a command failure into the driver error taxonomy. It is the
// single place where wire errors become retryable envelopes; precedence
// follows the service contract:
//
//   - invalid session with an expired transaction is terminal, session dead
//   - any other invalid session retries on a fresh session
//   - OCC conflicts and capacity rejections retry on the same session
//   - transport 5xx retries on a fresh session
//   - everything else is terminal and kills the session
func Classify(err error, transactionID string) error {
	switch {
	case err == nil:
		return nil
	case IsContextError(err):
		return Transaction(err, transactionID, false)
	case wire.IsTransactionExpired(err):
		return Transaction(err, transactionID, false)
	case wire.IsInvalidSession(err):
		return Retryable(err,
			WithName("INVALID_SESSION"),
			WithTransactionID(transactionID),
			WithDeadSession(),
			WithBackoff(backoff.TypeFast),
		)
	case wire.IsOccConflict(err):
		return Retryable(err,
			WithName("OCC_CONFLICT"),
			WithTransactionID(transactionID),
			WithBackoff(backoff.TypeFast),
		)
	case wire.IsCapacityExceeded(err):
		return Retryable(err,
			WithName("CAPACITY_EXCEEDED"),
			WithTransactionID(transactionID),
			WithBackoff(backoff.TypeSlow),
		)
	case wire.IsRetriableStatus(err):
		return Retryable(err,
			WithName("SERVICE_UNAVAILABLE"),
			WithTransactionID(transactionID),
			WithDeadSession(),
			WithBackoff(backoff.TypeFast),
		)
	default:
		return Transaction(err, transactionID, false)
	}
}

// IsInvalidSession reports whether the classified err originated from an
// invalid-session rejection (expired-transaction flavor excluded).
func IsInvalidSession(err error) bool {
	return wire.IsInvalidSession(err) && !wire.IsTransactionExpired(err)
}
