// Package session implements the one-to-one handle to a server-side ledger
// session and the transaction state machine running on top of it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ledgerdb/ledger-go-sdk/internal/stack"
	"github.com/ledgerdb/ledger-go-sdk/wire"
	"github.com/ledgerdb/ledger-go-sdk/internal/xerrors"
	"github.com/ledgerdb/ledger-go-sdk/trace"
)

var errNoResultMember = errors.New("malformed transport result: missing command member")

// Session owns one server-side session. Callers must not issue overlapping
// commands; the driver guarantees at most one in-flight command per session.
type Session struct {
	id        string
	token     string
	transport wire.Transport
	trace     *trace.Session

	alive  atomic.Bool
	closed atomic.Bool
}

// New opens a server session on the given ledger. The client-visible session
// id is the request id of the start-session exchange; the session token
// stays on the wire only.
func New(ctx context.Context, transport wire.Transport, ledgerName string, t *trace.Session) (*Session, error) {
	if t == nil {
		t = &trace.Session{}
	}
	s := &Session{
		transport: transport,
		trace:     t,
	}
	res, err := s.send(ctx, "StartSession", &wire.SendCommandRequest{
		StartSession: &wire.StartSessionRequest{
			LedgerName: ledgerName,
		},
	})
	if err != nil {
		return nil, xerrors.WithStackTrace(xerrors.Classify(err, ""))
	}
	if res.StartSession == nil {
		return nil, xerrors.WithStackTrace(errNoResultMember)
	}
	s.id = res.RequestID
	s.token = res.StartSession.SessionToken
	s.alive.Store(true)

	return s, nil
}

// ID is the client-visible session identity.
func (s *Session) ID() string {
	return s.id
}

// IsAlive reports whether the session is still usable. Liveness is decided
// by error classification, never re-derived from message text.
func (s *Session) IsAlive() bool {
	return s.alive.Load()
}

// SetDead marks the session unusable.
func (s *Session) SetDead() {
	s.alive.Store(false)
}

func (s *Session) send(ctx context.Context, name string, req *wire.SendCommandRequest) (*wire.SendCommandResult, error) {
	req.SessionToken = s.token
	req.InvocationID = uuid.NewString()
	onDone := s.traceOnCommand(&ctx, name)
	res, err := s.transport.Send(ctx, req)
	if onDone != nil {
		var requestID string
		if res != nil {
			requestID = res.RequestID
		}
		onDone(trace.SessionCommandDoneInfo{
			RequestID: requestID,
			Error:     err,
		})
	}

	return res, err
}

func (s *Session) traceOnCommand(ctx *context.Context, name string) func(trace.SessionCommandDoneInfo) {
	if s.trace.OnCommand == nil {
		return nil
	}

	return s.trace.OnCommand(trace.SessionCommandStartInfo{
		Context:   ctx,
		Call:      stack.FunctionID(""),
		SessionID: s.id,
		Command:   name,
	})
}

// classify wraps a command failure and downgrades the liveness flag when the
// classification says the session died with it.
func (s *Session) classify(err error, transactionID string) error {
	if err == nil {
		return nil
	}
	cerr := xerrors.Classify(err, transactionID)
	if !xerrors.SessionAliveAfter(cerr) {
		s.SetDead()
	}

	return xerrors.WithStackTrace(cerr, xerrors.WithSkipDepth(1))
}

// StartTransaction opens a transaction and returns its server-issued id.
func (s *Session) StartTransaction(ctx context.Context) (string, error) {
	res, err := s.send(ctx, "StartTransaction", &wire.SendCommandRequest{
		StartTransaction: &wire.StartTransactionRequest{},
	})
	if err != nil {
		return "", s.classify(err, "")
	}
	if res.StartTransaction == nil {
		return "", xerrors.WithStackTrace(errNoResultMember)
	}

	return res.StartTransaction.TransactionID, nil
}

// ExecuteStatement runs one statement inside the transaction.
func (s *Session) ExecuteStatement(
	ctx context.Context,
	transactionID, statement string,
	parameters [][]byte,
) (*wire.ExecuteStatementResult, error) {
	res, err := s.send(ctx, "ExecuteStatement", &wire.SendCommandRequest{
		ExecuteStatement: &wire.ExecuteStatementRequest{
			TransactionID: transactionID,
			Statement:     statement,
			Parameters:    parameters,
		},
	})
	if err != nil {
		return nil, s.classify(err, transactionID)
	}
	if res.ExecuteStatement == nil {
		return nil, xerrors.WithStackTrace(errNoResultMember)
	}

	return res.ExecuteStatement, nil
}

// FetchPage pulls the next page of an executed statement's output.
func (s *Session) FetchPage(
	ctx context.Context,
	transactionID, nextPageToken string,
) (*wire.FetchPageResult, error) {
	res, err := s.send(ctx, "FetchPage", &wire.SendCommandRequest{
		FetchPage: &wire.FetchPageRequest{
			TransactionID: transactionID,
			NextPageToken: nextPageToken,
		},
	})
	if err != nil {
		return nil, s.classify(err, transactionID)
	}
	if res.FetchPage == nil {
		return nil, xerrors.WithStackTrace(errNoResultMember)
	}

	return res.FetchPage, nil
}

// CommitTransaction transmits the accumulated digest. The echoed digest is
// verified by the transaction, not here.
func (s *Session) CommitTransaction(
	ctx context.Context,
	transactionID string,
	commitDigest []byte,
) (*wire.CommitTransactionResult, error) {
	res, err := s.send(ctx, "CommitTransaction", &wire.SendCommandRequest{
		CommitTransaction: &wire.CommitTransactionRequest{
			TransactionID: transactionID,
			CommitDigest:  commitDigest,
		},
	})
	if err != nil {
		return nil, s.classify(err, transactionID)
	}
	if res.CommitTransaction == nil {
		return nil, xerrors.WithStackTrace(errNoResultMember)
	}

	return res.CommitTransaction, nil
}

// AbortTransaction rolls back the in-flight transaction, if any.
func (s *Session) AbortTransaction(ctx context.Context) error {
	_, err := s.send(ctx, "AbortTransaction", &wire.SendCommandRequest{
		AbortTransaction: &wire.AbortTransactionRequest{},
	})
	if err != nil {
		return s.classify(err, "")
	}

	return nil
}

// Close ends the server session. A session marked dead is dropped without
// wire traffic: the server has already discarded its side. The session is
// unusable afterwards regardless of the outcome.
func (s *Session) Close(ctx context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	if !s.alive.Swap(false) {
		return nil
	}
	_, err := s.send(ctx, "EndSession", &wire.SendCommandRequest{
		EndSession: &wire.EndSessionRequest{},
	})
	if err != nil {
		return xerrors.WithStackTrace(fmt.Errorf("end session %q: %w", s.id, err))
	}

	return nil
}
