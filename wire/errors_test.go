package wire

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorRendersCodeStatusAndRequestID(t *testing.T) {
	err := &Error{
		Code:           CodeOccConflict,
		Message:        "conflict",
		HTTPStatusCode: http.StatusConflict,
		RequestID:      "req-1",
	}
	require.Contains(t, err.Error(), CodeOccConflict)
	require.Contains(t, err.Error(), "409")
	require.Contains(t, err.Error(), "req-1")
}

func TestClassificationHelpers(t *testing.T) {
	for _, tt := range []struct {
		name string
		err  error
		is   func(error) bool
		want bool
	}{
		{
			name: "invalid session",
			err:  &Error{Code: CodeInvalidSession, Message: "invalid session"},
			is:   IsInvalidSession,
			want: true,
		},
		{
			name: "expired transaction is invalid session",
			err:  &Error{Code: CodeInvalidSession, Message: "Transaction 324weqr2314 has expired"},
			is:   IsInvalidSession,
			want: true,
		},
		{
			name: "expired transaction detected",
			err:  &Error{Code: CodeInvalidSession, Message: "Transaction 324weqr2314 has expired"},
			is:   IsTransactionExpired,
			want: true,
		},
		{
			name: "plain invalid session is not expired",
			err:  &Error{Code: CodeInvalidSession, Message: "invalid session"},
			is:   IsTransactionExpired,
			want: false,
		},
		{
			name: "expired message with other code is not expired",
			err:  &Error{Code: CodeBadRequest, Message: "Transaction x has expired"},
			is:   IsTransactionExpired,
			want: false,
		},
		{
			name: "occ conflict",
			err:  &Error{Code: CodeOccConflict},
			is:   IsOccConflict,
			want: true,
		},
		{
			name: "capacity exceeded",
			err:  &Error{Code: CodeCapacityExceeded},
			is:   IsCapacityExceeded,
			want: true,
		},
		{
			name: "rate exceeded counts as capacity",
			err:  &Error{Code: CodeRateExceeded},
			is:   IsCapacityExceeded,
			want: true,
		},
		{
			name: "bad request",
			err:  &Error{Code: CodeBadRequest},
			is:   IsBadRequest,
			want: true,
		},
		{
			name: "500 is retriable",
			err:  &Error{Code: "InternalFailure", HTTPStatusCode: http.StatusInternalServerError},
			is:   IsRetriableStatus,
			want: true,
		},
		{
			name: "503 is retriable",
			err:  &Error{Code: "ServiceUnavailable", HTTPStatusCode: http.StatusServiceUnavailable},
			is:   IsRetriableStatus,
			want: true,
		},
		{
			name: "502 is retriable",
			err:  &Error{Code: "BadGateway", HTTPStatusCode: http.StatusBadGateway},
			is:   IsRetriableStatus,
			want: true,
		},
		{
			name: "400 is not retriable",
			err:  &Error{Code: CodeBadRequest, HTTPStatusCode: http.StatusBadRequest},
			is:   IsRetriableStatus,
			want: false,
		},
		{
			name: "non-wire error",
			err:  errors.New("boom"),
			is:   IsInvalidSession,
			want: false,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.is(tt.err))
		})
	}
}

func TestHelpersUnwrap(t *testing.T) {
	err := fmt.Errorf("sending command: %w", &Error{Code: CodeOccConflict})
	require.True(t, IsOccConflict(err))
}
