// Package progress tracks the advancement of an extraction and publishes it to observers.
package progress

import (
	"math"
	"sync"
)

// State is a point in time view of an extraction.
type State struct {
	Stage     Step   `json:"stage"`
	SubStage  Step   `json:"subStage,omitempty"`
	Percent   int    `json:"percent"`
	Error     bool   `json:"error"`
	ErrorCode string `json:"errorCode,omitempty"`
	Link      string `json:"link,omitempty"`
}

// current is the most advanced step of the state.
func (s State) current() Step {
	return max(s.Stage, s.SubStage)
}

// Tracker holds the state of one extraction. It is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	state  State
	subs   map[chan State]struct{}
	closed bool
}

// New returns a Tracker in the None stage.
func New() *Tracker {
	return &Tracker{subs: make(map[chan State]struct{})}
}

// SetStep moves the extraction to step. Steps only move forward: it returns false and changes
// nothing when step is not after the current one.
func (t *Tracker) SetStep(step Step) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.setStep(step) {
		return false
	}
	t.publish()
	return true
}

func (t *Tracker) setStep(step Step) bool {
	if !step.valid() || step <= t.state.current() {
		return false
	}

	t.state.Stage = step.Stage()
	t.state.SubStage = None
	if step.IsSub() {
		t.state.SubStage = step
	}
	t.state.Percent = max(t.state.Percent, step.Floor())
	return true
}

// Advance reports that a fraction, between 0 and 1, of step is done. The percentage is
// interpolated between the floor of step and the floor of the next one, and never goes back.
// Advancing a step which is behind the current one does nothing.
func (t *Tracker) Advance(step Step, fraction float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	changed := false
	if step != t.state.current() {
		if !t.setStep(step) {
			return
		}
		changed = true
	}
	if math.IsNaN(fraction) {
		fraction = 0
	}
	fraction = min(max(fraction, 0), 1)

	if p := step.Floor() + int(float64(step.Next().Floor()-step.Floor())*fraction); p > t.state.Percent {
		t.state.Percent = p
		changed = true
	}
	if changed {
		t.publish()
	}
}

// Fail flags the extraction as failed with code. The flag stays set whatever happens next.
func (t *Tracker) Fail(code string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.Error = true
	t.state.ErrorCode = code
	t.publish()
}

// Finish completes the extraction, link pointing to its result.
func (t *Tracker) Finish(link string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.Stage = Finished
	t.state.SubStage = None
	t.state.Percent = Finished.Floor()
	t.state.Link = link
	t.publish()
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state
}

// Subscribe returns a channel receiving the state after each change, and a function to stop
// receiving. A slow reader only misses intermediate states: the channel always holds the latest.
// The channel is closed when the tracker is closed or unsubscribe is called.
func (t *Tracker) Subscribe() (<-chan State, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan State, 1)
	ch <- t.state
	if t.closed {
		close(ch)
		return ch, func() {}
	}
	t.subs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			if _, ok := t.subs[ch]; ok {
				delete(t.subs, ch)
				close(ch)
			}
		})
	}
}

// Close ends every subscription. Later changes are still visible through Snapshot.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	for ch := range t.subs {
		close(ch)
	}
	clear(t.subs)
}

// publish sends the state to subscribers, replacing any state they did not read yet.
// t.mu must be held.
func (t *Tracker) publish() {
	for ch := range t.subs {
		select {
		case <-ch:
		default:
		}
		ch <- t.state
	}
}
