package log

import (
	"context"
	"time"

	"github.com/ledgerdb/ledger-go-sdk/trace"
)

// Driver returns trace.Driver with logging events from the facade.
func Driver(l Logger) (t trace.Driver) {
	t.OnExecute = func(info trace.DriverExecuteStartInfo) func(trace.DriverExecuteDoneInfo) {
		ctx := with(*info.Context, TRACE, "driver")
		l.Log(ctx, "execute start")
		start := time.Now()

		return func(info trace.DriverExecuteDoneInfo) {
			if info.Error == nil {
				l.Log(ctx, "execute done",
					latency(start),
					Int("attempts", info.Attempts),
				)
			} else {
				l.Log(WithLevel(ctx, ERROR), "execute failed",
					Error(info.Error),
					latency(start),
					Int("attempts", info.Attempts),
				)
			}
		}
	}
	t.OnListTableNames = func(info trace.DriverListTableNamesStartInfo) func(trace.DriverListTableNamesDoneInfo) {
		ctx := with(*info.Context, TRACE, "driver")
		l.Log(ctx, "list table names start")
		start := time.Now()

		return func(info trace.DriverListTableNamesDoneInfo) {
			if info.Error == nil {
				l.Log(ctx, "list table names done",
					latency(start),
					Int("tables", len(info.Tables)),
				)
			} else {
				l.Log(WithLevel(ctx, ERROR), "list table names failed",
					Error(info.Error),
					latency(start),
				)
			}
		}
	}
	t.OnClose = func(info trace.DriverCloseStartInfo) func(trace.DriverCloseDoneInfo) {
		ctx := with(*info.Context, INFO, "driver")
		l.Log(ctx, "close start")
		start := time.Now()

		return func(info trace.DriverCloseDoneInfo) {
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

func with(ctx context.Context, lvl Level, names ...string) context.Context {
	return WithLevel(WithNames(ctx, names...), lvl)
}
