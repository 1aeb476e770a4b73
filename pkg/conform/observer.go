package conform

import (
	"sync"
	"sync/atomic"
)

// Outcome is the result of one check invocation.
type Outcome struct {
	Seq        int64   `json:"seq"`
	Check      string  `json:"check"`
	Sample     int     `json:"sample"` // 1 or 2 under All, 0 for direct calls
	T          float64 `json:"t"`
	Pass       bool    `json:"pass"`
	Degenerate bool    `json:"degenerate"` // norm(u) was exactly zero
	Automatic  bool    `json:"automatic"`  // false for the smoke checks
}

// Observer receives check outcomes as they happen.
type Observer interface {
	Observe(o Outcome)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(o Outcome)

// Observe calls f(o).
func (f ObserverFunc) Observe(o Outcome) { f(o) }

// MultiObserver fans an outcome out to every non-nil observer in order.
func MultiObserver(observers ...Observer) Observer {
	return ObserverFunc(func(o Outcome) {
		for _, obs := range observers {
			if obs != nil {
				obs.Observe(o)
			}
		}
	})
}

// Clock hands out logical sequence numbers.
type Clock interface {
	Next() int64
}

// counter is the default Clock: monotonic, starting at 1.
type counter struct {
	seq atomic.Int64
}

func (c *counter) Next() int64 { return c.seq.Add(1) }

// Recorder collects outcomes in arrival order, stamping each with a
// sequence number from its clock.
type Recorder struct {
	mu       sync.Mutex
	clock    Clock
	outcomes []Outcome
}

// NewRecorder creates a Recorder. A nil clock counts from 1.
func NewRecorder(clock Clock) *Recorder {
	if clock == nil {
		clock = &counter{}
	}
	return &Recorder{clock: clock}
}

// Observe implements Observer.
func (r *Recorder) Observe(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.Seq = r.clock.Next()
	r.outcomes = append(r.outcomes, o)
}

// Outcomes returns a copy of everything recorded so far.
func (r *Recorder) Outcomes() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Outcome, len(r.outcomes))
	copy(out, r.outcomes)
	return out
}

// Failed returns the automatic outcomes that did not pass.
func (r *Recorder) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes() {
		if o.Automatic && !o.Pass {
			failed = append(failed, o)
		}
	}
	return failed
}
