package uploader

// Callbacks is the injected observer for pipeline events. Any field may be
// nil. Callbacks are invoked from a single reporter goroutine, so
// implementations do not need their own locking, but they also must not
// assume they run on the caller's goroutine.
type Callbacks struct {
	OnProgress     func(filename string, percent int, loaded, total int64)
	OnFileComplete func(filename, key string, success bool, err error)
	OnAllComplete  func(summary Summary)

	// OnError receives validation failures, terminal transfer failures and
	// reconciliation rejections. The subject is the filename, or
	// common.SecuritySubject when the server rejected a claimed upload.
	OnError func(subject, msg string)
}

// Summary is the final batch outcome delivered to OnAllComplete.
type Summary struct {
	Completed    int
	Failed       int
	Total        int
	Success      bool
	Confirmation *ConfirmResult
}

type eventKind int

const (
	eventProgress eventKind = iota
	eventFileComplete
	eventError
	eventAllComplete
)

type event struct {
	kind     eventKind
	filename string
	key      string
	success  bool
	err      error
	msg      string
	loaded   int64
	total    int64
	summary  Summary
}

// reporter relays task state transitions to the callbacks without ever
// applying backpressure to the pipeline: progress events are dropped when
// the buffer is full, and the buffer is sized so that terminal events always
// fit (the scheduler emits a bounded number of them per task).
type reporter struct {
	cb   Callbacks
	ch   chan event
	done chan struct{}
}

func newReporter(cb Callbacks, capacity int) *reporter {
	if capacity < 64 {
		capacity = 64
	}
	r := &reporter{
		cb:   cb,
		ch:   make(chan event, capacity),
		done: make(chan struct{}),
	}
	go r.drain()
	return r
}

func (r *reporter) drain() {
	defer close(r.done)
	for ev := range r.ch {
		switch ev.kind {
		case eventProgress:
			if r.cb.OnProgress != nil {
				percent := 0
				if ev.total > 0 {
					percent = int(ev.loaded * 100 / ev.total)
				}
				r.cb.OnProgress(ev.filename, percent, ev.loaded, ev.total)
			}
		case eventFileComplete:
			if r.cb.OnFileComplete != nil {
				r.cb.OnFileComplete(ev.filename, ev.key, ev.success, ev.err)
			}
		case eventError:
			if r.cb.OnError != nil {
				r.cb.OnError(ev.filename, ev.msg)
			}
		case eventAllComplete:
			if r.cb.OnAllComplete != nil {
				r.cb.OnAllComplete(ev.summary)
			}
		}
	}
}

// progress is lossy: if the buffer is full the event is discarded.
func (r *reporter) progress(filename string, loaded, total int64) {
	select {
	case r.ch <- event{kind: eventProgress, filename: filename, loaded: loaded, total: total}:
	default:
	}
}

func (r *reporter) fileComplete(filename, key string, success bool, err error) {
	r.ch <- event{kind: eventFileComplete, filename: filename, key: key, success: success, err: err}
}

func (r *reporter) error(subject, msg string) {
	r.ch <- event{kind: eventError, filename: subject, msg: msg}
}

func (r *reporter) allComplete(s Summary) {
	r.ch <- event{kind: eventAllComplete, summary: s}
}

// close flushes remaining events and waits for the drain goroutine.
func (r *reporter) close() {
	close(r.ch)
	<-r.done
}
