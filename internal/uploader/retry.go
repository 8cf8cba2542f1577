package uploader

import (
	"time"

	"github.com/sethvargo/go-retry"
)

// retryController decides whether a transiently-failed task goes back to the
// queue. Non-retryable failures (validation, credential rejection) never
// reach it.
type retryController struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// requeue prepares the task for another attempt: increments the attempt
// counter, resets progress, and returns the backoff delay to observe before
// the next transfer. Returns false when the retry ceiling is reached and the
// task must be abandoned.
func (rc *retryController) requeue(t *Task) bool {
	if t.Attempt >= rc.maxRetries {
		return false
	}

	t.Attempt++
	t.progressBytes = 0

	if t.backoff == nil {
		t.backoff = retry.WithCappedDuration(rc.maxDelay, retry.NewFibonacci(rc.baseDelay))
	}
	d, _ := t.backoff.Next()
	t.delay = d
	t.State = StateQueued

	return true
}
