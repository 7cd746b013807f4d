package errs2

import (
	"context"
	"errors"
)

// IgnoreCanceled returns nil if err is context.Canceled (directly or
// wrapped), and err unchanged otherwise. Used at shutdown paths where
// cancellation is the expected, non-error way a background task ends.
func IgnoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
