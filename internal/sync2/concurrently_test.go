package sync2_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/splitgraph/seafowl/internal/sync2"
)

func TestConcurrently_NoErrors(t *testing.T) {
	errs := sync2.Concurrently(
		func() error { return nil },
		func() error { return nil },
	)
	assert.Empty(t, errs)
}

func TestConcurrently_CollectsErrorsInOrder(t *testing.T) {
	errA := errors.New("a")
	errC := errors.New("c")

	errs := sync2.Concurrently(
		func() error { return errA },
		func() error { return nil },
		func() error { return errC },
	)

	assert.Equal(t, []error{errA, errC}, errs)
}
