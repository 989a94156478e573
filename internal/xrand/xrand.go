package xrand

import (
	"math/rand"
	"sync"
	"time"
)

type Rand interface {
	Int64(n int64) int64
	Int(n int) int
}

type r struct {
	m *sync.Mutex

	r *rand.Rand
}

type option func(r *r)

func WithLock() option {
	return func(r *r) {
		r.m = &sync.Mutex{}
	}
}

func WithSeed(seed int64) option {
	return func(r *r) {
		r.r = rand.New(rand.NewSource(seed)) //nolint:gosec
	}
}

func New(opts ...option) Rand {
	r := &r{
		r: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec
	}
	for _, o := range opts {
		if o != nil {
			o(r)
		}
	}

	return r
}

func (r *r) int64n(n int64) int64 {
	if r.m != nil {
		r.m.Lock()
		defer r.m.Unlock()
	}

	return r.r.Int63n(n)
}

func (r *r) Int64(n int64) int64 {
	return r.int64n(n)
}

func (r *r) Int(n int) int {
	return int(r.int64n(int64(n)))
}
