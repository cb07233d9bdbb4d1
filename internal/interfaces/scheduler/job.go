package scheduler

import "context"

// Job is a unit of work the worker pool executes. Implementations must
// respect the context for cancellation and timeouts.
type Job interface {
	Execute(ctx context.Context) error

	// UserID identifies whose data the job touches, for logging.
	UserID() string

	// Description is a human-readable label used in logs and traces.
	Description() string
}
