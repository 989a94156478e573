package pool

import (
	"errors"
)

var (
	// ErrClosed is returned by a closed pool on any acquire.
	ErrClosed = errors.New("session pool is closed")

	// ErrExhausted is returned when no permit frees up within the acquire
	// timeout.
	ErrExhausted = errors.New("session pool is empty")
)
