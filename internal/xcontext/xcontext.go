package xcontext

import (
	"context"
	"time"
)

// ValueOnly strips cancellation and deadline from ctx keeping its values.
func ValueOnly(ctx context.Context) context.Context {
	return valueOnlyContext{ctx}
}

type valueOnlyContext struct {
	context.Context
}

func (valueOnlyContext) Deadline() (time.Time, bool) {
	return time.Time{}, false
}

func (valueOnlyContext) Done() <-chan struct{} {
	return nil
}

func (valueOnlyContext) Err() error {
	return nil
}
