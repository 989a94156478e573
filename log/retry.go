package log

import (
	"time"

	"github.com/ledgerdb/ledger-go-sdk/trace"
)

// Retry returns trace.Retry with logging events from the retry orchestrator.
func Retry(l Logger) (t trace.Retry) {
	t.OnRetry = func(
		info trace.RetryLoopStartInfo,
	) func(
		trace.RetryLoopAttemptInfo,
	) func(
		trace.RetryLoopDoneInfo,
	) {
		ctx := with(*info.Context, TRACE, "retry")
		l.Log(ctx, "start")
		start := time.Now()

		return func(info trace.RetryLoopAttemptInfo) func(trace.RetryLoopDoneInfo) {
			if info.Error == nil {
				l.Log(ctx, "attempt done",
					Int("attempt", info.Attempt),
					latency(start),
				)
			} else {
				l.Log(WithLevel(ctx, DEBUG), "attempt failed",
					Error(info.Error),
					Int("attempt", info.Attempt),
					Duration("backoff", info.Backoff),
					latency(start),
				)
			}

			return func(info trace.RetryLoopDoneInfo) {
				if info.Error == nil {
					l.Log(ctx, "done",
						Int("attempts", info.Attempts),
						latency(start),
					)
				} else {
					l.Log(WithLevel(ctx, ERROR), "failed",
						Error(info.Error),
						Int("attempts", info.Attempts),
						latency(start),
					)
				}
			}
		}
	}

	return t
}
