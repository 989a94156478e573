package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDriverComposeCallsBoth(t *testing.T) {
	var calls []string
	hook := func(name string) func(DriverExecuteStartInfo) func(DriverExecuteDoneInfo) {
		return func(DriverExecuteStartInfo) func(DriverExecuteDoneInfo) {
			calls = append(calls, name+"/start")

			return func(DriverExecuteDoneInfo) {
				calls = append(calls, name+"/done")
			}
		}
	}
	a := &Driver{OnExecute: hook("a")}
	b := &Driver{OnExecute: hook("b")}

	ctx := context.Background()
	done := a.Compose(b).OnExecute(DriverExecuteStartInfo{Context: &ctx})
	done(DriverExecuteDoneInfo{})

	require.Equal(t, []string{"a/start", "b/start", "a/done", "b/done"}, calls)
}

func TestComposeWithNil(t *testing.T) {
	var called bool
	a := &Driver{OnExecute: func(DriverExecuteStartInfo) func(DriverExecuteDoneInfo) {
		called = true

		return func(DriverExecuteDoneInfo) {}
	}}

	composed := a.Compose(nil)
	done := composed.OnExecute(DriverExecuteStartInfo{})
	done(DriverExecuteDoneInfo{})
	require.True(t, called)
}

func TestComposeOneSidedHook(t *testing.T) {
	var got int
	a := &Pool{}
	b := &Pool{OnChange: func(info PoolChangeInfo) {
		got = info.Idle
	}}

	a.Compose(b).OnChange(PoolChangeInfo{Idle: 3})
	require.Equal(t, 3, got)
}

func TestRetryComposeThreadsAttempts(t *testing.T) {
	var calls []string
	hook := func(name string) func(RetryLoopStartInfo) func(RetryLoopAttemptInfo) func(RetryLoopDoneInfo) {
		return func(RetryLoopStartInfo) func(RetryLoopAttemptInfo) func(RetryLoopDoneInfo) {
			calls = append(calls, name+"/start")

			return func(RetryLoopAttemptInfo) func(RetryLoopDoneInfo) {
				calls = append(calls, name+"/attempt")

				return func(RetryLoopDoneInfo) {
					calls = append(calls, name+"/done")
				}
			}
		}
	}
	a := &Retry{OnRetry: hook("a")}
	b := &Retry{OnRetry: hook("b")}

	onAttempt := a.Compose(b).OnRetry(RetryLoopStartInfo{})
	onDone := onAttempt(RetryLoopAttemptInfo{Attempt: 1})
	onDone(RetryLoopDoneInfo{Attempts: 1})

	require.Equal(t, []string{
		"a/start", "b/start",
		"a/attempt", "b/attempt",
		"a/done", "b/done",
	}, calls)
}
