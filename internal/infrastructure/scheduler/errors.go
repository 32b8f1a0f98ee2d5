package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when queueing on a stopped manager
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrUnknownTaskType is returned for a task type without an implementation
	ErrUnknownTaskType = errors.New("unknown task type")

	// ErrTaskAlreadyRunning is returned when a task of the same type is queued or running
	ErrTaskAlreadyRunning = errors.New("task is already running")

	// ErrTaskPanicked wraps a recovered panic from a task
	ErrTaskPanicked = errors.New("task panicked")
)
