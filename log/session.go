package log

import (
	"time"

	"github.com/ledgerdb/ledger-go-sdk/trace"
)

// Session returns trace.Session with logging events from session commands.
func Session(l Logger) (t trace.Session) {
	t.OnCommand = func(info trace.SessionCommandStartInfo) func(trace.SessionCommandDoneInfo) {
		ctx := with(*info.Context, TRACE, "session")
		l.Log(ctx, "command start",
			String("session_id", info.SessionID),
			String("command", info.Command),
		)
		start := time.Now()
		command := info.Command

		return func(info trace.SessionCommandDoneInfo) {
			if info.Error == nil {
				l.Log(ctx, "command done",
					String("command", command),
					String("request_id", info.RequestID),
					latency(start),
				)
			} else {
				l.Log(WithLevel(ctx, DEBUG), "command failed",
					Error(info.Error),
					String("command", command),
					latency(start),
				)
			}
		}
	}

	return t
}
