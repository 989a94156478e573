package xerrors

import (
	"errors"
	"fmt"
)

// transactionError scopes a non-retriable failure to one transaction
// attempt. The orchestrator reads the liveness flag to decide whether the
// session goes back to the pool or is discarded.
type transactionError struct {
	transactionID string
	sessionAlive  bool
	err           error
}

func (te *transactionError) TransactionID() string {
	return te.transactionID
}

func (te *transactionError) SessionAlive() bool {
	return te.sessionAlive
}

func (te *transactionError) Error() string {
	return fmt.Sprintf("transaction %q failed (session alive = %t): %s",
		te.transactionID, te.sessionAlive, te.err.Error(),
	)
}

func (te *transactionError) Unwrap() error {
	return te.err
}

func Transaction(err error, transactionID string, sessionAlive bool) error {
	return &transactionError{
		transactionID: transactionID,
		sessionAlive:  sessionAlive,
		err:           err,
	}
}

// TransactionError return the wrapper if err is an attempt-scoped error,
// else nil.
func TransactionError(err error) *transactionError {
	var e *transactionError
	if errors.As(err, &e) {
		return e
	}

	return nil
}

// SessionAliveAfter reports whether the session that observed err is still
// usable. Unclassified errors pessimistically kill the session.
func SessionAliveAfter(err error) bool {
	if re := RetryableError(err); re != nil {
		return re.SessionAlive()
	}
	if te := TransactionError(err); te != nil {
		return te.SessionAlive()
	}

	return false
}
