package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTaskNotFound is returned by Get/Wait for unknown task ids.
var ErrTaskNotFound = errors.New("ai: task not found")

// ErrWaitDeadline is returned when a caller-side deadline elapses before the
// task reaches a terminal status. The underlying provider task may still be
// running; the client abandons it without sending a cancellation.
var ErrWaitDeadline = errors.New("ai: wait deadline exceeded")

// Provider is the capability set every AI backend implements. Synchronous
// backends complete the task fully inside Run; asynchronous ones return it
// in queued or running and make progress observable through Get.
type Provider interface {
	// Run submits work. An error before a task id exists invalidates the
	// whole attempt; a failure after acceptance yields a Task recorded as
	// failed with its id preserved.
	Run(ctx context.Context, req TaskRequest) (*Task, error)

	// Get fetches current status without side effects.
	Get(ctx context.Context, taskID string) (*Task, error)

	// Wait blocks via cooperative polling until a terminal status or the
	// provider's internal ceiling is reached.
	Wait(ctx context.Context, taskID string) (*Task, error)
}

// WaitForCompletion polls Get on a fixed interval until the task is terminal
// or maxWait elapses. On the deadline it returns the last observed task
// together with ErrWaitDeadline: the caller must treat the run as failed
// even though Get may later show the task succeeded. This caller-side
// deadline is distinct from any provider-side timed_out semantics.
func WaitForCompletion(ctx context.Context, p Provider, taskID string, interval, maxWait time.Duration) (*Task, error) {
	deadline := time.Now().Add(maxWait)

	task, err := p.Get(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("poll task %s: %w", taskID, err)
	}

	for !task.Status.Terminal() {
		if time.Now().After(deadline) {
			return task, ErrWaitDeadline
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return task, ctx.Err()
		}
		task, err = p.Get(ctx, taskID)
		if err != nil {
			return nil, fmt.Errorf("poll task %s: %w", taskID, err)
		}
	}
	return task, nil
}
