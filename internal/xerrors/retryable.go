package xerrors

import (
	"errors"
	"fmt"

	"github.com/ledgerdb/ledger-go-sdk/internal/backoff"
	"github.com/ledgerdb/ledger-go-sdk/internal/xstring"
)

// retryableError is the envelope the retry orchestrator consumes. It carries
// the liveness of the session the failed attempt ran on; liveness is decided
// once, at classification time, never re-derived from the message.
type retryableError struct {
	name          string
	err           error
	backoffType   backoff.Type
	sessionAlive  bool
	transactionID string
}

func (re *retryableError) Name() string {
	return "retryable/" + re.name
}

func (re *retryableError) BackoffType() backoff.Type {
	return re.backoffType
}

func (re *retryableError) SessionAlive() bool {
	return re.sessionAlive
}

func (re *retryableError) TransactionID() string {
	return re.transactionID
}

func (re *retryableError) Error() string {
	b := xstring.Buffer()
	defer b.Free()
	b.WriteString(re.Name())
	fmt.Fprintf(b, " (source error = %q", re.err.Error())
	if len(re.transactionID) > 0 {
		fmt.Fprintf(b, ", transaction id = %q", re.transactionID)
	}
	fmt.Fprintf(b, ", session alive = %t)", re.sessionAlive)

	return b.String()
}

func (re *retryableError) Unwrap() error {
	return re.err
}

type RetryableErrorOption interface {
	applyToRetryableError(re *retryableError)
}

var (
	_ RetryableErrorOption = backoffOption{}
	_ RetryableErrorOption = nameOption("")
	_ RetryableErrorOption = deadSessionOption{}
	_ RetryableErrorOption = transactionIDOption("")
)

type backoffOption struct {
	backoffType backoff.Type
}

func (t backoffOption) applyToRetryableError(re *retryableError) {
	re.backoffType = t.backoffType
}

func WithBackoff(t backoff.Type) backoffOption {
	return backoffOption{backoffType: t}
}

type nameOption string

func (name nameOption) applyToRetryableError(re *retryableError) {
	re.name = string(name)
}

func WithName(name string) nameOption {
	return nameOption(name)
}

type deadSessionOption struct{}

func (deadSessionOption) applyToRetryableError(re *retryableError) {
	re.sessionAlive = false
}

func WithDeadSession() deadSessionOption {
	return deadSessionOption{}
}

type transactionIDOption string

func (id transactionIDOption) applyToRetryableError(re *retryableError) {
	re.transactionID = string(id)
}

func WithTransactionID(id string) transactionIDOption {
	return transactionIDOption(id)
}

func Retryable(err error, opts ...RetryableErrorOption) error {
	re := &retryableError{
		err:          err,
		name:         "CUSTOM",
		backoffType:  backoff.TypeFast,
		sessionAlive: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt.applyToRetryableError(re)
		}
	}

	return re
}

// RetryableError return the envelope if err is a retriable error, else nil.
func RetryableError(err error) *retryableError {
	var e *retryableError
	if errors.As(err, &e) {
		return e
	}

	return nil
}
