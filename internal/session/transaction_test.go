package session

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerdb/ledger-go-sdk/internal/qhash"
	"github.com/ledgerdb/ledger-go-sdk/internal/xerrors"
	"github.com/ledgerdb/ledger-go-sdk/testutil"
	"github.com/ledgerdb/ledger-go-sdk/wire"
)

func newTestTransaction(t *testing.T, steps ...testutil.Step) (*testutil.Transport, *Session, *Transaction) {
	t.Helper()
	transport := testutil.NewTransport(append([]testutil.Step{
		testutil.OkStartSession("secret-token", "request-1"),
		testutil.OkStartTransaction("txn-1"),
	}, steps...)...)
	s, err := New(context.Background(), transport, "ledger", nil)
	require.NoError(t, err)
	tx, err := s.BeginTransaction(context.Background())
	require.NoError(t, err)
	require.Equal(t, "txn-1", tx.ID())
	require.Equal(t, Open, tx.Status())

	return transport, s, tx
}

func TestCommitSendsAccumulatedDigest(t *testing.T) {
	transport, _, tx := newTestTransaction(t,
		testutil.OkExecute(&wire.Page{Values: [][]byte{{0x01}}}, nil, nil),
		testutil.EchoCommit(),
	)

	_, err := tx.Execute(context.Background(), "DELETE FROM t")
	require.NoError(t, err)
	require.NoError(t, tx.Commit(context.Background()))
	require.Equal(t, Committed, tx.Status())

	want := qhash.New("txn-1")
	want.Update("DELETE FROM t", nil)

	sent := transport.Sent()
	commit := sent[len(sent)-1].CommitTransaction
	require.NotNil(t, commit)
	require.Equal(t, want.Sum(), commit.CommitDigest)
}

func TestCommitDigestMismatchIsIntegrityError(t *testing.T) {
	_, s, tx := newTestTransaction(t,
		testutil.OkCommit("txn-1", make([]byte, qhash.Size)),
	)

	err := tx.Commit(context.Background())
	require.Error(t, err)

	var mismatch *xerrors.DigestMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, "txn-1", mismatch.TransactionID)
	require.Nil(t, xerrors.RetryableError(err))
	require.Equal(t, Errored, tx.Status())
	require.True(t, s.IsAlive())
}

func TestExecuteOnCommittedTransactionFails(t *testing.T) {
	_, _, tx := newTestTransaction(t,
		testutil.EchoCommit(),
	)

	require.NoError(t, tx.Commit(context.Background()))
	_, err := tx.Execute(context.Background(), "DELETE FROM t")
	require.ErrorIs(t, err, ErrTransactionClosed)
	require.ErrorIs(t, tx.Commit(context.Background()), ErrTransactionClosed)
}

func TestAbortFromOpen(t *testing.T) {
	transport, s, tx := newTestTransaction(t,
		testutil.OkAbort(),
	)

	require.NoError(t, tx.Abort(context.Background()))
	require.Equal(t, Aborted, tx.Status())
	require.True(t, s.IsAlive())
	require.Equal(t, 1, transport.CountCommand("AbortTransaction"))

	require.ErrorIs(t, tx.Abort(context.Background()), ErrTransactionClosed)
}

func TestAbortFromErrored(t *testing.T) {
	_, _, tx := newTestTransaction(t,
		testutil.Fail(wire.CodeOccConflict, "conflict", http.StatusConflict),
		testutil.OkAbort(),
	)

	_, err := tx.Execute(context.Background(), "DELETE FROM t")
	require.Error(t, err)
	require.Equal(t, Errored, tx.Status())

	require.NoError(t, tx.Abort(context.Background()))
	require.Equal(t, Aborted, tx.Status())
}

func TestAbortFailureIsSwallowedAndKillsSession(t *testing.T) {
	_, s, tx := newTestTransaction(t,
		testutil.Fail("InternalFailure", "internal", http.StatusInternalServerError),
	)

	require.NoError(t, tx.Abort(context.Background()))
	require.Equal(t, Aborted, tx.Status())
	require.False(t, s.IsAlive())
}

func TestExpiredTransactionIsTerminal(t *testing.T) {
	_, s, tx := newTestTransaction(t,
		testutil.Fail(wire.CodeInvalidSession, "Transaction 324weqr2314 has expired", http.StatusBadRequest),
	)

	_, err := tx.Execute(context.Background(), "DELETE FROM t")
	require.Error(t, err)
	require.False(t, s.IsAlive())
	require.Nil(t, xerrors.RetryableError(err))

	var werr *wire.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wire.CodeInvalidSession, werr.Code)
}
