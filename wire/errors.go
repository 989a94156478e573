package wire

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
)

// Error codes returned by the ledger service.
const (
	CodeInvalidSession   = "InvalidSessionException"
	CodeOccConflict      = "OccConflictException"
	CodeCapacityExceeded = "CapacityExceededException"
	CodeRateExceeded     = "RateExceededException"
	CodeBadRequest       = "BadRequestException"
	CodeLimitExceeded    = "LimitExceededException"
)

// Error is a service-level failure of one command exchange.
type Error struct {
	Code           string
	Message        string
	HTTPStatusCode int
	RequestID      string
}

func (e *Error) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s: %s (http status = %d, request id = %q)",
			e.Code, e.Message, e.HTTPStatusCode, e.RequestID,
		)
	}

	return fmt.Sprintf("%s: %s (http status = %d)", e.Code, e.Message, e.HTTPStatusCode)
}

var transactionExpiredRe = regexp.MustCompile(`Transaction\s.*\shas\sexpired`)

func asError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return nil
}

func IsInvalidSession(err error) bool {
	if e := asError(err); e != nil {
		return e.Code == CodeInvalidSession
	}

	return false
}

// IsTransactionExpired reports whether err is the invalid-session flavor
// raised after the server-side transaction outlived its lifetime. This one
// is terminal: retrying on a fresh session cannot resurrect the transaction.
func IsTransactionExpired(err error) bool {
	if e := asError(err); e != nil {
		return e.Code == CodeInvalidSession && transactionExpiredRe.MatchString(e.Message)
	}

	return false
}

func IsOccConflict(err error) bool {
	if e := asError(err); e != nil {
		return e.Code == CodeOccConflict
	}

	return false
}

func IsCapacityExceeded(err error) bool {
	if e := asError(err); e != nil {
		return e.Code == CodeCapacityExceeded || e.Code == CodeRateExceeded
	}

	return false
}

func IsBadRequest(err error) bool {
	if e := asError(err); e != nil {
		return e.Code == CodeBadRequest
	}

	return false
}

// IsRetriableStatus reports whether err carries an HTTP status the driver
// treats as a transient transport failure.
func IsRetriableStatus(err error) bool {
	if e := asError(err); e != nil {
		switch e.HTTPStatusCode {
		case http.StatusInternalServerError, http.StatusServiceUnavailable:
			return true
		default:
			return e.HTTPStatusCode >= 500 && e.HTTPStatusCode <= 599
		}
	}

	return false
}
