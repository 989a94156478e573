// Package testutil provides a scripted transport for driver tests: a queue
// of canned results and errors consumed one per command, with full
// recording of everything sent.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ledgerdb/ledger-go-sdk/wire"
)

// Step is one scripted exchange. Either Result/Err are returned as-is, or,
// when Do is set, the response is computed from the request.
type Step struct {
	Result *wire.SendCommandResult
	Err    error
	Do     func(req *wire.SendCommandRequest) (*wire.SendCommandResult, error)
}

// Transport replays a script of steps. Safe for concurrent use.
type Transport struct {
	mu    sync.Mutex
	steps []Step
	sent  []*wire.SendCommandRequest
}

var _ wire.Transport = (*Transport)(nil)

func NewTransport(steps ...Step) *Transport {
	return &Transport{steps: steps}
}

// Enqueue appends steps to the script.
func (t *Transport) Enqueue(steps ...Step) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, steps...)
}

func (t *Transport) Send(ctx context.Context, req *wire.SendCommandRequest) (*wire.SendCommandResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.sent = append(t.sent, req)
	if len(t.steps) == 0 {
		t.mu.Unlock()

		return nil, fmt.Errorf("unexpected command %s: script exhausted", CommandName(req))
	}
	var step Step
	step, t.steps = t.steps[0], t.steps[1:]
	t.mu.Unlock()

	if step.Do != nil {
		return step.Do(req)
	}
	if step.Err != nil {
		return nil, step.Err
	}
	res := step.Result
	if res == nil {
		res = &wire.SendCommandResult{}
	}
	if res.RequestID == "" {
		res.RequestID = uuid.NewString()
	}

	return res, nil
}

// Sent returns everything sent so far, in order.
func (t *Transport) Sent() []*wire.SendCommandRequest {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]*wire.SendCommandRequest(nil), t.sent...)
}

// CountCommand counts sent commands by name.
func (t *Transport) CountCommand(name string) (n int) {
	for _, req := range t.Sent() {
		if CommandName(req) == name {
			n++
		}
	}

	return n
}

// Remaining reports how many scripted steps were not consumed.
func (t *Transport) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.steps)
}

// CommandName names the discriminated union member set on req.
func CommandName(req *wire.SendCommandRequest) string {
	switch {
	case req.StartSession != nil:
		return "StartSession"
	case req.StartTransaction != nil:
		return "StartTransaction"
	case req.ExecuteStatement != nil:
		return "ExecuteStatement"
	case req.FetchPage != nil:
		return "FetchPage"
	case req.CommitTransaction != nil:
		return "CommitTransaction"
	case req.AbortTransaction != nil:
		return "AbortTransaction"
	case req.EndSession != nil:
		return "EndSession"
	default:
		return "Unknown"
	}
}

// OkStartSession scripts a successful start-session exchange. The request
// id doubles as the client-visible session id.
func OkStartSession(sessionToken, requestID string) Step {
	return Step{Result: &wire.SendCommandResult{
		StartSession: &wire.StartSessionResult{SessionToken: sessionToken},
		RequestID:    requestID,
	}}
}

// OkStartTransaction scripts a successful transaction start.
func OkStartTransaction(transactionID string) Step {
	return Step{Result: &wire.SendCommandResult{
		StartTransaction: &wire.StartTransactionResult{TransactionID: transactionID},
	}}
}

// OkExecute scripts a successful execute returning one page of values.
func OkExecute(page *wire.Page, ios *wire.IOUsage, timing *wire.TimingInformation) Step {
	return Step{Result: &wire.SendCommandResult{
		ExecuteStatement: &wire.ExecuteStatementResult{
			FirstPage:         page,
			ConsumedIOs:       ios,
			TimingInformation: timing,
		},
	}}
}

// OkFetchPage scripts a successful page fetch.
func OkFetchPage(page *wire.Page, ios *wire.IOUsage, timing *wire.TimingInformation) Step {
	return Step{Result: &wire.SendCommandResult{
		FetchPage: &wire.FetchPageResult{
			Page:              page,
			ConsumedIOs:       ios,
			TimingInformation: timing,
		},
	}}
}

// OkCommit scripts a successful commit echoing digest.
func OkCommit(transactionID string, digest []byte) Step {
	return Step{Result: &wire.SendCommandResult{
		CommitTransaction: &wire.CommitTransactionResult{
			TransactionID: transactionID,
			CommitDigest:  digest,
		},
	}}
}

// EchoCommit scripts a commit that echoes whatever digest the client sent.
func EchoCommit() Step {
	return Step{Do: func(req *wire.SendCommandRequest) (*wire.SendCommandResult, error) {
		return &wire.SendCommandResult{
			CommitTransaction: &wire.CommitTransactionResult{
				TransactionID: req.CommitTransaction.TransactionID,
				CommitDigest:  req.CommitTransaction.CommitDigest,
			},
			RequestID: uuid.NewString(),
		}, nil
	}}
}

// OkAbort scripts a successful abort.
func OkAbort() Step {
	return Step{Result: &wire.SendCommandResult{
		AbortTransaction: &wire.AbortTransactionResult{},
	}}
}

// OkEndSession scripts a successful end-session.
func OkEndSession() Step {
	return Step{Result: &wire.SendCommandResult{
		EndSession: &wire.EndSessionResult{},
	}}
}

// Fail scripts a service error.
func Fail(code, message string, httpStatus int) Step {
	return Step{Err: &wire.Error{
		Code:           code,
		Message:        message,
		HTTPStatusCode: httpStatus,
		RequestID:      uuid.NewString(),
	}}
}
