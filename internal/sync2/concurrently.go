package sync2

import "sync"

// Concurrently runs every fn in its own goroutine, waits for all of them
// to finish, and returns the non-nil errors in call order - mirroring
// storj.io/common/sync2's Concurrently, used throughout the teacher's own
// tests (e.g. private/server/server_test.go) to race a blocking operation
// against a second goroutine that disrupts it (closing a connection,
// canceling a context) without the test itself having to hand-roll a
// WaitGroup each time.
func Concurrently(fns ...func() error) []error {
	errs := make([]error, len(fns))

	var wg sync.WaitGroup
	wg.Add(len(fns))
	for i, fn := range fns {
		i, fn := i, fn
		go func() {
			defer wg.Done()
			errs[i] = fn()
		}()
	}
	wg.Wait()

	var result []error
	for _, err := range errs {
		if err != nil {
			result = append(result, err)
		}
	}
	return result
}
