package extractor

import (
	"context"
	"errors"
	"sync"

	"github.com/osallek/osa-extractor/internal/progress"
)

// State is the lifecycle state of a Run.
type State int

// Run states. Succeeded, Failed and Cancelled are terminal.
const (
	Idle State = iota
	Running
	Succeeded
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Result of a successful extraction.
type Result struct {
	// ID is the id the server stored the snapshot under.
	ID string
	// Link points to the result page of the snapshot.
	Link string
	// Uploaded is the number of assets sent to the server.
	Uploaded int
}

// Run is one extraction started by Extractor.Start.
type Run struct {
	tracker *progress.Tracker
	cancel  context.CancelFunc
	done    chan struct{}

	mu     sync.Mutex
	state  State
	result Result
	err    error
}

func newRun(cancel context.CancelFunc) *Run {
	return &Run{
		tracker: progress.New(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Wait blocks until the extraction ends and returns its outcome.
func (r *Run) Wait() (Result, error) {
	<-r.done

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, r.err
}

// Done is closed when the extraction ends.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Cancel asks the extraction to stop. Its staging directory is still removed.
func (r *Run) Cancel() {
	r.cancel()
}

// State returns the lifecycle state of the run.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Progress returns the current progress of the extraction.
func (r *Run) Progress() progress.State {
	return r.tracker.Snapshot()
}

// Subscribe returns a channel receiving every progress change of the extraction, closed when it
// ends, and a function to stop listening.
func (r *Run) Subscribe() (<-chan progress.State, func()) {
	return r.tracker.Subscribe()
}

func (r *Run) setState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
}

func (r *Run) finish(res Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.result, r.err = res, err
	switch {
	case err == nil:
		r.state = Succeeded
		return
	case errors.Is(err, context.Canceled):
		r.state = Cancelled
	default:
		r.state = Failed
	}
	r.tracker.Fail(ErrorCode(err))
}
