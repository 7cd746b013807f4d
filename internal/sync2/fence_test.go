package sync2_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/splitgraph/seafowl/internal/sync2"
)

func TestFence(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var group errgroup.Group
	var fence sync2.Fence
	var done int32

	for i := 0; i < 10; i++ {
		group.Go(func() error {
			if !fence.Wait(ctx) {
				return errors.New("got false from Wait")
			}
			if atomic.LoadInt32(&done) == 0 {
				return errors.New("fence not yet released")
			}
			return nil
		})
	}

	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 3; i++ {
		group.Go(func() error {
			atomic.StoreInt32(&done, 1)
			fence.Release()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestFence_ContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	var group errgroup.Group
	var fence sync2.Fence

	for i := 0; i < 10; i++ {
		group.Go(func() error {
			if fence.Wait(ctx) {
				return errors.New("got true from Wait")
			}
			return nil
		})
	}

	time.Sleep(100 * time.Millisecond)
	cancel()

	if err := group.Wait(); err != nil {
		t.Fatal(err)
	}
}
