package pool

import (
	"time"
)

const (
	// DefaultLimit caps concurrent transactions when the application left
	// the limit unset (configured value 0 means "driver default").
	DefaultLimit = 50

	// DefaultAcquireTimeout bounds the wait for a permit. It is short on
	// purpose: saturation surfaces immediately as ErrExhausted instead of a
	// hang.
	DefaultAcquireTimeout = 1 * time.Millisecond

	// DefaultCloseTimeout bounds best-effort end-session commands issued
	// for discarded sessions.
	DefaultCloseTimeout = 5 * time.Second
)
