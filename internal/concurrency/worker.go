package concurrency

import (
	"context"
	"errors"
)

// ForEach runs job for every arg in order on the calling goroutine.
// A failing job does not stop the remaining ones; all failures are joined.
// Cancelling ctx stops the loop before the next job.
func ForEach(ctx context.Context, args []string, job func(ctx context.Context, arg string) error) error {
	var errs []error
	for _, arg := range args {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := job(ctx, arg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
