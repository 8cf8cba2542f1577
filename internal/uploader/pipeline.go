package uploader

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ameledin/studiovault/internal/classify"
	"github.com/ameledin/studiovault/internal/common"
	"github.com/ameledin/studiovault/internal/logging"
)

const (
	DefaultParallel          = 4
	DefaultMaxRetries        = 3
	DefaultPerAttemptTimeout = 5 * time.Minute

	// The confirmation call covers server-side verification of a whole
	// batch, so its deadline is generous. A deadline still exists.
	DefaultConfirmTimeout = 2 * time.Minute

	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultRetryMaxDelay  = 8 * time.Second
)

// Options configures a Pipeline. The zero value gets sensible defaults.
type Options struct {
	// Parallel bounds concurrent transfers (default 4).
	Parallel int
	// MaxRetries is the per-file transient retry ceiling (default 3).
	MaxRetries int
	// PerAttemptTimeout bounds a single transfer attempt, independent of
	// the batch's overall lifetime.
	PerAttemptTimeout time.Duration
	// ConfirmTimeout bounds one confirmation call.
	ConfirmTimeout time.Duration
	// RetryBaseDelay / RetryMaxDelay shape the backoff between transfer
	// attempts of the same file.
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	// HTTPClient performs the storage PUTs. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	Callbacks Callbacks
	Logger    logging.Logger
}

// FileResult is one durably stored file in the final result.
type FileResult struct {
	Filename string `json:"filename"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
}

// FileFailure is one file that did not make it. Security marks server-side
// reconciliation rejections, which callers must surface distinctly.
type FileFailure struct {
	Filename string `json:"filename"`
	Key      string `json:"key,omitempty"`
	Reason   string `json:"reason"`
	Security bool   `json:"security,omitempty"`
}

// Result is the authoritative batch outcome. Success is true only when every
// submitted file was transferred and server-confirmed.
type Result struct {
	Success      bool           `json:"success"`
	Completed    []FileResult   `json:"completed"`
	Failed       []FileFailure  `json:"failed"`
	Total        int            `json:"total"`
	Confirmation *ConfirmResult `json:"confirmation,omitempty"`
}

// Pipeline uploads batches of files directly to object storage using
// credentials issued by a Broker, then has the broker verify what actually
// landed. All state is per-call; one Pipeline may run concurrent batches.
type Pipeline struct {
	broker Broker
	opts   Options
	writer objectWriter
	log    logging.Logger

	// base delay between confirmation attempts, shortened in tests.
	confirmBase time.Duration
}

func New(broker Broker, opts Options) *Pipeline {
	if opts.Parallel <= 0 {
		opts.Parallel = DefaultParallel
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.PerAttemptTimeout <= 0 {
		opts.PerAttemptTimeout = DefaultPerAttemptTimeout
	}
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = DefaultConfirmTimeout
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = defaultRetryBaseDelay
	}
	if opts.RetryMaxDelay <= 0 {
		opts.RetryMaxDelay = defaultRetryMaxDelay
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewDefault()
	}

	return &Pipeline{
		broker:      broker,
		opts:        opts,
		writer:      newHTTPObjectWriter(opts.HTTPClient),
		log:         log.With("module", "uploader"),
		confirmBase: time.Second,
	}
}

// UploadFiles runs the full pipeline for one batch: classification and
// validation, batch credential issuance, bounded-parallel transfer with
// retry, and the mandatory confirmation step. The returned Result is always
// populated and satisfies len(Completed)+len(Failed) == Total. The error is
// non-nil only for batch-fatal conditions (credential issuance failure,
// unverifiable confirmation, cancellation); per-file failures are data in
// the Result, not errors.
func (p *Pipeline) UploadFiles(ctx context.Context, files []File, collectionID string) (*Result, error) {
	result := &Result{
		Completed: []FileResult{},
		Failed:    []FileFailure{},
		Total:     len(files),
	}

	if len(files) == 0 {
		result.Success = true
		return result, nil
	}

	rep := newReporter(p.opts.Callbacks, 64+4*len(files))
	defer rep.close()

	log := p.log.With("collection_id", collectionID)

	// Validation: oversized files are reported immediately and never
	// queued. The rest of the batch proceeds normally.
	valid := make([]File, 0, len(files))
	for _, f := range files {
		cat, maxBytes := classify.Classify(f.Name())
		if f.Size() > maxBytes {
			reason := fmt.Sprintf("%s: %s exceeds %s limit of %d bytes", common.ErrFileTooLarge, f.Name(), cat, maxBytes)
			result.Failed = append(result.Failed, FileFailure{Filename: f.Name(), Reason: reason})
			rep.error(f.Name(), reason)
			rep.fileComplete(f.Name(), "", false, common.ErrFileTooLarge)
			log.Warn(ctx, "file rejected at validation", "filename", f.Name(), "category", string(cat), "size", f.Size())
			continue
		}
		valid = append(valid, f)
	}

	if len(valid) == 0 {
		p.finish(rep, result, nil)
		return result, nil
	}

	// One credential request per batch, so the broker can reject the whole
	// thing atomically before any bytes move.
	reqs := make([]CredentialRequest, len(valid))
	for i, f := range valid {
		reqs[i] = CredentialRequest{Filename: f.Name(), ContentType: f.ContentType(), Size: f.Size()}
	}

	grant, err := p.broker.RequestCredentials(ctx, collectionID, reqs)
	if err != nil {
		err = fmt.Errorf("%w: %v", common.ErrCredentialIssue, err)
		for _, f := range valid {
			result.Failed = append(result.Failed, FileFailure{Filename: f.Name(), Reason: err.Error()})
			rep.fileComplete(f.Name(), "", false, err)
		}
		p.finish(rep, result, nil)
		return result, err
	}
	if len(grant.Credentials) != len(valid) {
		err = fmt.Errorf("%w: got %d credentials for %d files", common.ErrCredentialIssue, len(grant.Credentials), len(valid))
		for _, f := range valid {
			result.Failed = append(result.Failed, FileFailure{Filename: f.Name(), Reason: err.Error()})
			rep.fileComplete(f.Name(), "", false, err)
		}
		p.finish(rep, result, nil)
		return result, err
	}

	tasks := make([]*Task, len(valid))
	for i, f := range valid {
		cat, _ := classify.Classify(f.Name())
		tasks[i] = newTask(f, cat, grant.Credentials[i])
	}

	sched := &scheduler{
		parallel:          p.opts.Parallel,
		perAttemptTimeout: p.opts.PerAttemptTimeout,
		writer:            p.writer,
		broker:            p.broker,
		collectionID:      collectionID,
		retrier: &retryController{
			maxRetries: p.opts.MaxRetries,
			baseDelay:  p.opts.RetryBaseDelay,
			maxDelay:   p.opts.RetryMaxDelay,
		},
		rep: rep,
		log: log,
	}

	completedTasks, failedTasks := sched.run(ctx, tasks)

	for _, t := range failedTasks {
		result.Failed = append(result.Failed, FileFailure{
			Filename: t.File.Name(),
			Key:      t.Key,
			Reason:   t.err.Error(),
		})
	}

	confirm, confirmErr := p.confirm(ctx, rep, log, collectionID, grant.BatchToken, completedTasks, result)
	result.Confirmation = confirm

	p.finish(rep, result, confirm)

	if confirmErr != nil {
		return result, confirmErr
	}
	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	return result, nil
}

func (p *Pipeline) finish(rep *reporter, result *Result, confirm *ConfirmResult) {
	result.Success = len(result.Failed) == 0 && result.Total == len(result.Completed) && (confirm == nil || confirm.Success)
	rep.allComplete(Summary{
		Completed:    len(result.Completed),
		Failed:       len(result.Failed),
		Total:        result.Total,
		Success:      result.Success,
		Confirmation: confirm,
	})
}
