package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/ptcheck/pkg/conform"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string            // assertion type
	Expected string            // human-readable expected outcome
	Actual   string            // human-readable actual outcome
	Outcomes []conform.Outcome // recorded outcomes, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Outcomes) > 0 {
		fmt.Fprintf(&buf, "\nOutcomes:\n")
		for _, o := range e.Outcomes {
			fmt.Fprintf(&buf, "  [%d] %s sample=%d t=%g pass=%t degenerate=%t\n",
				o.Seq, o.Check, o.Sample, o.T, o.Pass, o.Degenerate)
		}
	}
	return buf.String()
}

func assertTranscriptContains(result *Result, a Assertion) error {
	if strings.Contains(result.Transcript, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTranscriptContains,
		Expected: fmt.Sprintf("transcript contains %q", a.Text),
		Actual:   "not found",
	}
}

func assertTranscriptAbsent(result *Result, a Assertion) error {
	idx := strings.Index(result.Transcript, a.Text)
	if idx < 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertTranscriptAbsent,
		Expected: fmt.Sprintf("transcript does not contain %q", a.Text),
		Actual:   fmt.Sprintf("found on line %q", lineAt(result.Transcript, idx)),
	}
}

// assertTranscriptOrder checks that each text first appears after the
// previous one. Other lines may come between them.
func assertTranscriptOrder(result *Result, a Assertion) error {
	pos := 0
	for i, text := range a.Lines {
		idx := strings.Index(result.Transcript[pos:], text)
		if idx < 0 {
			actual := fmt.Sprintf("missing %q", text)
			if i > 0 && strings.Contains(result.Transcript, text) {
				actual = fmt.Sprintf("%q does not appear after %q", text, a.Lines[i-1])
			}
			return &AssertionError{
				Type:     AssertTranscriptOrder,
				Expected: fmt.Sprintf("lines in order: %q", a.Lines),
				Actual:   actual,
			}
		}
		pos += idx + len(text)
	}
	return nil
}

// assertCheckOutcome checks that at least one matching outcome exists and
// that every matching outcome has the expected fields.
func assertCheckOutcome(result *Result, a Assertion) error {
	matched := 0
	for _, o := range result.Outcomes {
		if o.Check != a.Check || (a.Sample != 0 && o.Sample != a.Sample) {
			continue
		}
		matched++
		if a.Pass != nil && o.Pass != *a.Pass {
			return &AssertionError{
				Type:     AssertCheckOutcome,
				Expected: fmt.Sprintf("%s pass=%t", describe(a), *a.Pass),
				Actual:   fmt.Sprintf("seq %d pass=%t", o.Seq, o.Pass),
				Outcomes: result.Outcomes,
			}
		}
		if a.Degenerate != nil && o.Degenerate != *a.Degenerate {
			return &AssertionError{
				Type:     AssertCheckOutcome,
				Expected: fmt.Sprintf("%s degenerate=%t", describe(a), *a.Degenerate),
				Actual:   fmt.Sprintf("seq %d degenerate=%t", o.Seq, o.Degenerate),
				Outcomes: result.Outcomes,
			}
		}
	}
	if matched == 0 {
		return &AssertionError{
			Type:     AssertCheckOutcome,
			Expected: fmt.Sprintf("an outcome for %s", describe(a)),
			Actual:   "no such outcome",
			Outcomes: result.Outcomes,
		}
	}
	return nil
}

func describe(a Assertion) string {
	if a.Sample != 0 {
		return fmt.Sprintf("%s sample %d", a.Check, a.Sample)
	}
	return a.Check
}

func assertOutcomeCount(result *Result, a Assertion) error {
	count := 0
	for _, o := range result.Outcomes {
		if o.Check == a.Check {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertOutcomeCount,
		Expected: fmt.Sprintf("%s recorded %d time(s)", a.Check, a.Count),
		Actual:   fmt.Sprintf("recorded %d time(s)", count),
		Outcomes: result.Outcomes,
	}
}

func assertNoLeaks(result *Result) error {
	if result.Live == 0 && result.DoubleFrees == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertNoLeaks,
		Expected: "every vector freed exactly once",
		Actual:   fmt.Sprintf("%d live, %d double free(s)", result.Live, result.DoubleFrees),
	}
}

// lineAt returns the transcript line containing byte offset idx.
func lineAt(s string, idx int) string {
	start := strings.LastIndexByte(s[:idx], '\n') + 1
	end := strings.IndexByte(s[idx:], '\n')
	if end < 0 {
		return s[start:]
	}
	return s[start : idx+end]
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTranscriptContains:
			err = assertTranscriptContains(result, assertion)
		case AssertTranscriptAbsent:
			err = assertTranscriptAbsent(result, assertion)
		case AssertTranscriptOrder:
			err = assertTranscriptOrder(result, assertion)
		case AssertCheckOutcome:
			err = assertCheckOutcome(result, assertion)
		case AssertOutcomeCount:
			err = assertOutcomeCount(result, assertion)
		case AssertNoLeaks:
			err = assertNoLeaks(result)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
