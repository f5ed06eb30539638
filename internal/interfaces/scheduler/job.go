package scheduler

import "context"

// Job represents a unit of work executed by the worker pool. Different
// job types (account sync, trade polling) implement this interface.
type Job interface {
	// Execute runs the job. Context should be respected for cancellation
	// and timeouts.
	Execute(ctx context.Context) error

	// UserID returns the user this job works on behalf of, for logging.
	UserID() string

	// Description returns a human-readable description of the job.
	Description() string
}
