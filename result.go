package ledger

import (
	"context"

	"github.com/ledgerdb/ledger-go-sdk/internal/result"
)

// IOUsage holds cumulative server-reported I/O totals of one result.
type IOUsage = result.IOUsage

// TimingInformation holds cumulative server-reported processing time of one
// result.
type TimingInformation = result.TimingInformation

// BufferedResult is a fully materialized result that may be re-enumerated
// via Reset.
type BufferedResult = result.Buffered

// Result is the lazy, forward-only, single-use output of one executed
// statement. Values are binary Ion documents. A Result is bound to the
// transaction that produced it and must be consumed before the transaction
// function returns.
type Result interface {
	// HasNext reports whether another value may be available. It does not
	// guarantee the next page fetch will succeed.
	HasNext() bool

	// Next returns the next value, transparently fetching pages from the
	// server. Enumerating past the end returns ErrResultConsumed.
	Next(ctx context.Context) ([]byte, error)

	// ConsumedIOs returns cumulative I/O totals, nil when the server has
	// not reported any.
	ConsumedIOs() *IOUsage

	// TimingInformation returns cumulative processing time, nil when the
	// server has not reported any.
	TimingInformation() *TimingInformation

	// Buffer drains the remainder of the stream into a re-enumerable
	// result.
	Buffer(ctx context.Context) (*BufferedResult, error)
}

var _ Result = (*result.Stream)(nil)
