package uploader

import (
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/ameledin/studiovault/internal/classify"
)

// State tracks one task's position in the pipeline. Transitions are strictly
// forward except Transferring→Queued on a transient failure.
type State int

const (
	StateQueued State = iota
	StateTransferring
	StateSucceeded
	StateFailed
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateTransferring:
		return "transferring"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Task is one file's journey through the pipeline. Tasks are identified by
// their storage key, never by filename: two files sharing a name get
// distinct keys and are tracked independently.
type Task struct {
	File       File
	Category   classify.Category
	Key        string
	Credential Credential

	// Attempt starts at 0 and increments on every retry.
	Attempt int
	State   State

	// delay to observe before the next transfer attempt (retry backoff).
	delay   time.Duration
	backoff retry.Backoff

	// progressBytes is monotonically non-decreasing within one attempt and
	// reset to 0 on a new attempt. Written only by the task's active
	// transfer goroutine.
	progressBytes int64

	err error
}

func newTask(f File, cat classify.Category, cred Credential) *Task {
	return &Task{
		File:       f,
		Category:   cat,
		Key:        cred.Key,
		Credential: cred,
		State:      StateQueued,
	}
}
