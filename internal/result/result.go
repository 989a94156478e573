// Package result implements the paginated output of an executed statement:
// a lazy forward-only stream and a buffered variant for full drains.
package result

import (
	"context"
	"errors"

	"github.com/ledgerdb/ledger-go-sdk/wire"
	"github.com/ledgerdb/ledger-go-sdk/internal/xerrors"
)

// ErrStreamConsumed is returned on any advance of an exhausted stream.
var ErrStreamConsumed = errors.New("result stream is already consumed")

// PageFetcher pulls the next page of a statement's output. Implemented by
// the session owning the transaction.
type PageFetcher interface {
	FetchPage(ctx context.Context, transactionID, nextPageToken string) (*wire.FetchPageResult, error)
}

// IOUsage accumulates server-reported I/O consumption across pages.
type IOUsage struct {
	ReadIOs  int64
	WriteIOs int64
}

// TimingInformation accumulates server-reported processing time across
// pages.
type TimingInformation struct {
	ProcessingTimeMilliseconds int64
}

// Stream is the lazy, single-pass cursor over one statement's output.
// It is not safe for concurrent use.
type Stream struct {
	fetcher       PageFetcher
	transactionID string

	values        [][]byte
	index         int
	nextPageToken string
	consumed      bool

	ioUsage *IOUsage
	timing  *TimingInformation
}

// NewStream wraps the first page returned by an execute command.
func NewStream(
	fetcher PageFetcher,
	transactionID string,
	page *wire.Page,
	ioUsage *wire.IOUsage,
	timing *wire.TimingInformation,
) *Stream {
	s := &Stream{
		fetcher:       fetcher,
		transactionID: transactionID,
	}
	if page != nil {
		s.values = page.Values
		s.nextPageToken = page.NextPageToken
	}
	s.accumulate(ioUsage, timing)

	return s
}

func (s *Stream) accumulate(ioUsage *wire.IOUsage, timing *wire.TimingInformation) {
	if ioUsage != nil {
		if s.ioUsage == nil {
			s.ioUsage = &IOUsage{}
		}
		s.ioUsage.ReadIOs += ioUsage.ReadIOs
		s.ioUsage.WriteIOs += ioUsage.WriteIOs
	}
	if timing != nil {
		if s.timing == nil {
			s.timing = &TimingInformation{}
		}
		s.timing.ProcessingTimeMilliseconds += timing.ProcessingTimeMilliseconds
	}
}

// HasNext reports whether another value can be obtained without knowing yet
// whether fetching the next page will succeed.
func (s *Stream) HasNext() bool {
	if s.consumed {
		return false
	}

	return s.index < len(s.values) || s.nextPageToken != ""
}

// Next returns the next value, fetching the following page from the owning
// session when the in-memory one is exhausted. A fetch failure kills the
// stream and is surfaced as-is. Advancing an exhausted stream returns
// ErrStreamConsumed.
func (s *Stream) Next(ctx context.Context) ([]byte, error) {
	if s.consumed {
		return nil, xerrors.WithStackTrace(ErrStreamConsumed)
	}
	for s.index >= len(s.values) {
		if s.nextPageToken == "" {
			s.consumed = true

			return nil, xerrors.WithStackTrace(ErrStreamConsumed)
		}
		res, err := s.fetcher.FetchPage(ctx, s.transactionID, s.nextPageToken)
		if err != nil {
			s.consumed = true

			return nil, err
		}
		s.values, s.index, s.nextPageToken = nil, 0, ""
		if res.Page != nil {
			s.values = res.Page.Values
			s.nextPageToken = res.Page.NextPageToken
		}
		s.accumulate(res.ConsumedIOs, res.TimingInformation)
	}
	v := s.values[s.index]
	s.index++

	return v, nil
}

// ConsumedIOs returns cumulative I/O totals, nil when the server reported
// none so far.
func (s *Stream) ConsumedIOs() *IOUsage {
	if s.ioUsage == nil {
		return nil
	}
	cp := *s.ioUsage

	return &cp
}

// TimingInformation returns cumulative processing time, nil when the server
// reported none so far.
func (s *Stream) TimingInformation() *TimingInformation {
	if s.timing == nil {
		return nil
	}
	cp := *s.timing

	return &cp
}

// Buffer drains the rest of the stream into a re-enumerable result.
func (s *Stream) Buffer(ctx context.Context) (*Buffered, error) {
	var values [][]byte
	for s.HasNext() {
		v, err := s.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrStreamConsumed) {
				break
			}

			return nil, err
		}
		values = append(values, v)
	}
	s.consumed = true

	return &Buffered{
		values:  values,
		ioUsage: s.ConsumedIOs(),
		timing:  s.TimingInformation(),
	}, nil
}

// Buffered is a fully materialized result. Unlike Stream it may be
// enumerated repeatedly via Reset.
type Buffered struct {
	values  [][]byte
	index   int
	ioUsage *IOUsage
	timing  *TimingInformation
}

func (b *Buffered) HasNext() bool {
	return b.index < len(b.values)
}

func (b *Buffered) Next() ([]byte, error) {
	if b.index >= len(b.values) {
		return nil, xerrors.WithStackTrace(ErrStreamConsumed)
	}
	v := b.values[b.index]
	b.index++

	return v, nil
}

// Reset rewinds the cursor to the first value.
func (b *Buffered) Reset() {
	b.index = 0
}

// Values returns the underlying values without copying.
func (b *Buffered) Values() [][]byte {
	return b.values
}

func (b *Buffered) ConsumedIOs() *IOUsage {
	if b.ioUsage == nil {
		return nil
	}
	cp := *b.ioUsage

	return &cp
}

func (b *Buffered) TimingInformation() *TimingInformation {
	if b.timing == nil {
		return nil
	}
	cp := *b.timing

	return &cp
}
