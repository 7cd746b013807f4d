// Package sync2 provides small concurrency primitives beyond what the
// standard library offers, grounded on private/sync2/fence_test.go.
package sync2

import (
	"context"
	"sync"
)

// Fence lets any number of goroutines block until Release is called once;
// further calls to Release are no-ops. Used by the server's readiness
// signal: the server releases it once its listener is bound, and
// Server.Ready waits on it.
type Fence struct {
	once sync.Once
	done chan struct{}
	init sync.Once
}

func (f *Fence) lazyInit() {
	f.init.Do(func() {
		f.done = make(chan struct{})
	})
}

// Release unblocks every current and future Wait call. Safe to call more
// than once or concurrently; only the first call has an effect.
func (f *Fence) Release() {
	f.lazyInit()
	f.once.Do(func() { close(f.done) })
}

// Wait blocks until Release is called or ctx is done, returning false in
// the latter case.
func (f *Fence) Wait(ctx context.Context) bool {
	f.lazyInit()
	select {
	case <-f.done:
		return true
	case <-ctx.Done():
		return false
	}
}
