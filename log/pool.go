package log

import (
	"time"

	"github.com/ledgerdb/ledger-go-sdk/trace"
)

// Pool returns trace.Pool with logging events from the session pool.
func Pool(l Logger) (t trace.Pool) {
	t.OnGet = func(info trace.PoolGetStartInfo) func(trace.PoolGetDoneInfo) {
		ctx := with(*info.Context, TRACE, "pool")
		l.Log(ctx, "get start")
		start := time.Now()

		return func(info trace.PoolGetDoneInfo) {
			if info.Error == nil {
				l.Log(ctx, "get done",
					String("session_id", info.SessionID),
					Bool("reused", info.Reused),
					latency(start),
				)
			} else {
				l.Log(WithLevel(ctx, WARN), "get failed",
					Error(info.Error),
					latency(start),
				)
			}
		}
	}
	t.OnPut = func(info trace.PoolPutStartInfo) func(trace.PoolPutDoneInfo) {
		ctx := with(*info.Context, TRACE, "pool")
		l.Log(ctx, "put start", Bool("alive", info.Alive))
		start := time.Now()

		return func(info trace.PoolPutDoneInfo) {
			if info.Error == nil {
				l.Log(ctx, "put done", latency(start))
			} else {
				l.Log(WithLevel(ctx, DEBUG), "put failed",
					Error(info.Error),
					latency(start),
				)
			}
		}
	}
	t.OnClose = func(info trace.PoolCloseStartInfo) func(trace.PoolCloseDoneInfo) {
		ctx := with(*info.Context, INFO, "pool")
		l.Log(ctx, "close start")
		start := time.Now()

		return func(info trace.PoolCloseDoneInfo) {
			if info.Error == nil {
				l.Log(ctx, "close done", latency(start))
			} else {
				l.Log(WithLevel(ctx, WARN), "close failed",
					Error(info.Error),
					latency(start),
				)
			}
		}
	}

	return t
}
