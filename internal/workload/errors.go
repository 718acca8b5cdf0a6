package workload

import (
	"context"
	"errors"
	"fmt"

	"github.com/certainbookstore/bookbench/internal/bookstore"
	"github.com/certainbookstore/bookbench/internal/generator"
)

// CatastrophicError reports an unexpected fault that stopped a worker.
type CatastrophicError struct {
	Worker      int
	Interaction Interaction
	Err         error
}

func (e *CatastrophicError) Error() string {
	return fmt.Sprintf("worker %d: %s interaction: %v", e.Worker, e.Interaction, e.Err)
}

func (e *CatastrophicError) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether err fails only the current iteration: a service
// rejection or an empty purchase sample.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, generator.ErrEmptySample) {
		return true
	}
	return bookstore.IsServiceError(err)
}

func isContextError(ctx context.Context, err error) bool {
	if ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
