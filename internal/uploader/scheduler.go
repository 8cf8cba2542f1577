package uploader

import (
	"context"
	"errors"
	"time"

	"github.com/ameledin/studiovault/internal/common"
	"github.com/ameledin/studiovault/internal/logging"
)

type transferResult struct {
	task *Task
	err  error
}

// scheduler owns one batch's queue and drains it with bounded parallelism.
// A single goroutine runs the drain loop and is the only writer of the
// queue and result lists; transfers run concurrently and settle through the
// results channel. In-flight work is tracked by storage key: filenames are
// not unique within a batch and are never used as identity.
type scheduler struct {
	parallel          int
	perAttemptTimeout time.Duration
	writer            objectWriter
	broker            Broker
	collectionID      string
	retrier           *retryController
	rep               *reporter
	log               logging.Logger

	queue     []*Task
	inflight  map[string]struct{}
	completed []*Task
	failed    []*Task
}

// run processes tasks until the queue is fully drained, including tasks
// re-added by retries. It fills idle slots from the queue and blocks on the
// results channel until an active transfer settles. Cancelling ctx stops
// new launches; in-flight transfers abort through their request contexts
// and still settle here.
func (s *scheduler) run(ctx context.Context, tasks []*Task) (completed, failed []*Task) {
	s.queue = make([]*Task, len(tasks))
	copy(s.queue, tasks)
	s.inflight = make(map[string]struct{}, s.parallel)

	results := make(chan transferResult)

	for len(s.queue) > 0 || len(s.inflight) > 0 {
		for len(s.inflight) < s.parallel && len(s.queue) > 0 && ctx.Err() == nil {
			t := s.queue[0]
			s.queue = s.queue[1:]

			if _, dup := s.inflight[t.Key]; dup {
				// Key is the sole tracking identity; a duplicate means the
				// broker issued the same key twice.
				s.log.Error(ctx, "duplicate storage key in batch", "key", t.Key)
				t.State = StateFailed
				t.err = common.ErrorInternal
				s.failed = append(s.failed, t)
				s.rep.fileComplete(t.File.Name(), "", false, t.err)
				continue
			}

			s.inflight[t.Key] = struct{}{}
			t.State = StateTransferring
			go s.transfer(ctx, t, results)
		}

		if len(s.inflight) == 0 {
			break
		}

		res := <-results
		delete(s.inflight, res.task.Key)
		s.settle(ctx, res)
	}

	// Anything still queued after cancellation never started.
	for _, t := range s.queue {
		t.State = StateFailed
		t.err = ctx.Err()
		s.failed = append(s.failed, t)
		s.rep.fileComplete(t.File.Name(), "", false, t.err)
	}
	s.queue = nil

	return s.completed, s.failed
}

func (s *scheduler) transfer(ctx context.Context, t *Task, results chan<- transferResult) {
	if t.delay > 0 {
		timer := time.NewTimer(t.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			results <- transferResult{task: t, err: ctx.Err()}
			return
		}
	}

	attemptCtx := ctx
	if s.perAttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, s.perAttemptTimeout)
		defer cancel()
	}

	err := s.writer.Put(attemptCtx, t.Credential, t.File, func(loaded, total int64) {
		t.progressBytes = loaded
		s.rep.progress(t.File.Name(), loaded, total)
	})

	results <- transferResult{task: t, err: err}
}

func (s *scheduler) settle(ctx context.Context, res transferResult) {
	t := res.task

	if res.err == nil {
		t.State = StateSucceeded
		s.completed = append(s.completed, t)
		s.rep.fileComplete(t.File.Name(), t.Key, true, nil)
		s.log.Debug(ctx, "transfer succeeded", "key", t.Key, "attempt", t.Attempt)
		return
	}

	if ctx.Err() != nil {
		// Batch aborted: no retries, partial objects are left for the
		// confirmation step to reject.
		t.State = StateFailed
		t.err = res.err
		s.failed = append(s.failed, t)
		s.rep.fileComplete(t.File.Name(), "", false, res.err)
		return
	}

	if errors.Is(res.err, common.ErrCredentialExpired) {
		cred, rerr := s.broker.RenewCredential(ctx, s.collectionID, t.Key)
		if rerr != nil {
			s.log.Warn(ctx, "credential renewal failed", "key", t.Key, "error", rerr.Error())
		} else {
			t.Credential = *cred
		}
	}

	if s.retrier.requeue(t) {
		s.log.Info(ctx, "requeueing transfer", "key", t.Key, "attempt", t.Attempt, "error", res.err.Error())
		// Retries go to the front so an unlucky file does not wait behind
		// the whole remaining batch.
		s.queue = append([]*Task{t}, s.queue...)
		return
	}

	t.State = StateAbandoned
	t.err = res.err
	s.failed = append(s.failed, t)
	s.rep.fileComplete(t.File.Name(), "", false, res.err)
	s.rep.error(t.File.Name(), res.err.Error())
	s.log.Warn(ctx, "transfer abandoned", "key", t.Key, "attempts", t.Attempt+1, "error", res.err.Error())
}
