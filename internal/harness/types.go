package harness

import "github.com/roach88/ptcheck/pkg/conform"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if the verdict matched expect.pass and every assertion held.
	Pass bool `json:"pass"`

	// Verdict is the conformance result of the check or aggregate run.
	Verdict bool `json:"verdict"`

	// Transcript is everything the checks printed, plus Access output
	// when the scenario enables it.
	Transcript string `json:"transcript"`

	// Outcomes are the check invocations in order.
	Outcomes []conform.Outcome `json:"outcomes"`

	// Live and DoubleFrees come from the reference vector's tracker.
	Live        int `json:"live"`
	DoubleFrees int `json:"double_frees"`

	// Points and Faults describe the vector the checks ran against.
	// Points is 0 for a scalar.
	Points int      `json:"points"`
	Faults []string `json:"faults"`

	// Digest is the canonical digest of the run.
	Digest string `json:"digest"`

	// RunID is set when the run was written to a store.
	RunID string `json:"run_id,omitempty"`

	// Errors holds expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []conform.Outcome{},
		Errors:   []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
