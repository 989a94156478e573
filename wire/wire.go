// Package wire defines the command surface of the ledger session protocol.
//
// The concrete transport (HTTP signing, endpoint resolution, marshalling) is
// out of the driver core; the core sends one command per call through the
// Transport interface and consumes the mirrored result.
package wire

import (
	"context"
)

// Transport is an opaque request/response channel to the ledger service.
// Exactly one member of req must be set; the matching member of the result
// is set on success.
type Transport interface {
	Send(ctx context.Context, req *SendCommandRequest) (*SendCommandResult, error)
}

// SendCommandRequest is a discriminated union: exactly one command member
// is non-nil.
type SendCommandRequest struct {
	StartSession      *StartSessionRequest
	StartTransaction  *StartTransactionRequest
	ExecuteStatement  *ExecuteStatementRequest
	FetchPage         *FetchPageRequest
	CommitTransaction *CommitTransactionRequest
	AbortTransaction  *AbortTransactionRequest
	EndSession        *EndSessionRequest

	// SessionToken authenticates every command except StartSession.
	SessionToken string

	// InvocationID is a fresh client-generated id stamped on every command.
	// It travels with the request only; trace hooks and log records do not
	// carry it.
	InvocationID string
}

// SendCommandResult mirrors SendCommandRequest.
type SendCommandResult struct {
	StartSession      *StartSessionResult
	StartTransaction  *StartTransactionResult
	ExecuteStatement  *ExecuteStatementResult
	FetchPage         *FetchPageResult
	CommitTransaction *CommitTransactionResult
	AbortTransaction  *AbortTransactionResult
	EndSession        *EndSessionResult

	// RequestID is the server-issued id of this exchange. The request id of
	// the start-session exchange doubles as the client-visible session id.
	RequestID string
}

type StartSessionRequest struct {
	LedgerName string
}

type StartSessionResult struct {
	SessionToken string
}

type StartTransactionRequest struct{}

type StartTransactionResult struct {
	TransactionID string
}

type ExecuteStatementRequest struct {
	TransactionID string
	Statement     string
	Parameters    [][]byte
}

type ExecuteStatementResult struct {
	FirstPage         *Page
	ConsumedIOs       *IOUsage
	TimingInformation *TimingInformation
}

type FetchPageRequest struct {
	TransactionID string
	NextPageToken string
}

type FetchPageResult struct {
	Page              *Page
	ConsumedIOs       *IOUsage
	TimingInformation *TimingInformation
}

type CommitTransactionRequest struct {
	TransactionID string
	CommitDigest  []byte
}

type CommitTransactionResult struct {
	TransactionID     string
	CommitDigest      []byte
	ConsumedIOs       *IOUsage
	TimingInformation *TimingInformation
}

type AbortTransactionRequest struct{}

type AbortTransactionResult struct {
	TimingInformation *TimingInformation
}

type EndSessionRequest struct{}

type EndSessionResult struct {
	TimingInformation *TimingInformation
}

// Page is one chunk of an executed statement's output. Values are
// Ion-encoded binary documents.
type Page struct {
	Values        [][]byte
	NextPageToken string
}

// IOUsage holds server-reported I/O consumption of one command.
type IOUsage struct {
	ReadIOs  int64
	WriteIOs int64
}

// TimingInformation holds server-reported processing time of one command.
type TimingInformation struct {
	ProcessingTimeMilliseconds int64
}
