package xerrors

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerdb/ledger-go-sdk/internal/backoff"
	"github.com/ledgerdb/ledger-go-sdk/wire"
)

func TestClassifyPrecedence(t *testing.T) {
	for _, tt := range []struct {
		name         string
		err          error
		retryable    bool
		sessionAlive bool
		backoffType  backoff.Type
	}{
		{
			name:         "expired transaction is terminal and dead",
			err:          &wire.Error{Code: wire.CodeInvalidSession, Message: "Transaction x has expired"},
			retryable:    false,
			sessionAlive: false,
		},
		{
			name:         "invalid session retries on dead session",
			err:          &wire.Error{Code: wire.CodeInvalidSession, Message: "invalid session"},
			retryable:    true,
			sessionAlive: false,
			backoffType:  backoff.TypeFast,
		},
		{
			name:         "occ conflict retries on live session",
			err:          &wire.Error{Code: wire.CodeOccConflict, HTTPStatusCode: http.StatusConflict},
			retryable:    true,
			sessionAlive: true,
			backoffType:  backoff.TypeFast,
		},
		{
			name:         "capacity exceeded retries slowly on live session",
			err:          &wire.Error{Code: wire.CodeCapacityExceeded, HTTPStatusCode: http.StatusServiceUnavailable},
			retryable:    true,
			sessionAlive: true,
			backoffType:  backoff.TypeSlow,
		},
		{
			name:         "server 5xx retries on dead session",
			err:          &wire.Error{Code: "InternalFailure", HTTPStatusCode: http.StatusInternalServerError},
			retryable:    true,
			sessionAlive: false,
			backoffType:  backoff.TypeFast,
		},
		{
			name:         "client 4xx is terminal and dead",
			err:          &wire.Error{Code: wire.CodeBadRequest, HTTPStatusCode: http.StatusBadRequest},
			retryable:    false,
			sessionAlive: false,
		},
		{
			name:         "context cancellation is terminal",
			err:          context.Canceled,
			retryable:    false,
			sessionAlive: false,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cerr := Classify(tt.err, "txn-1")
			require.ErrorIs(t, cerr, tt.err)
			require.Equal(t, tt.sessionAlive, SessionAliveAfter(cerr))

			re := RetryableError(cerr)
			if !tt.retryable {
				require.Nil(t, re)
				te := TransactionError(cerr)
				require.NotNil(t, te)
				require.Equal(t, "txn-1", te.TransactionID())

				return
			}
			require.NotNil(t, re)
			require.Equal(t, "txn-1", re.TransactionID())
			require.Equal(t, tt.backoffType, re.BackoffType())
		})
	}
}

func TestClassifyNil(t *testing.T) {
	require.NoError(t, Classify(nil, "txn-1"))
}

func TestIsInvalidSessionExcludesExpired(t *testing.T) {
	require.True(t, IsInvalidSession(
		Classify(&wire.Error{Code: wire.CodeInvalidSession, Message: "invalid session"}, ""),
	))
	require.False(t, IsInvalidSession(
		Classify(&wire.Error{Code: wire.CodeInvalidSession, Message: "Transaction x has expired"}, ""),
	))
}

func TestRetryableDefaultsAndOptions(t *testing.T) {
	cause := errors.New("cause")
	err := Retryable(cause)
	re := RetryableError(err)
	require.NotNil(t, re)
	require.True(t, re.SessionAlive())
	require.Equal(t, backoff.TypeFast, re.BackoffType())
	require.Equal(t, "retryable/CUSTOM", re.Name())
	require.ErrorIs(t, err, cause)

	err = Retryable(cause,
		WithName("SESSION_CREATE"),
		WithDeadSession(),
		WithBackoff(backoff.TypeSlow),
		WithTransactionID("txn-9"),
	)
	re = RetryableError(err)
	require.Equal(t, "retryable/SESSION_CREATE", re.Name())
	require.False(t, re.SessionAlive())
	require.Equal(t, backoff.TypeSlow, re.BackoffType())
	require.Equal(t, "txn-9", re.TransactionID())
}

func TestSessionAliveAfterUnclassified(t *testing.T) {
	require.False(t, SessionAliveAfter(errors.New("boom")))
	require.True(t, SessionAliveAfter(Transaction(errors.New("boom"), "txn-1", true)))
}

func TestWithStackTraceAddsCallSite(t *testing.T) {
	cause := errors.New("boom")
	err := WithStackTrace(cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "boom at `")
	require.Contains(t, err.Error(), "ledger_test.go")
	require.NoError(t, WithStackTrace(nil))
}

func TestDigestMismatchErrorMessage(t *testing.T) {
	err := &DigestMismatchError{
		TransactionID: "txn-1",
		Client:        []byte{0x01},
		Server:        []byte{0x02},
	}
	require.Contains(t, err.Error(), "txn-1")
	require.Contains(t, err.Error(), "01")
	require.Contains(t, err.Error(), "02")
}
