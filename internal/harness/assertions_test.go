package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ptcheck/pkg/conform"
)

func boolPtr(b bool) *bool { return &b }

func testResult() *Result {
	r := NewResult()
	r.Transcript = "Starting TestBuf\n   TestBuf:   Test 1 Failed\nFinished TestBuf: some tests failed\n"
	r.Outcomes = []conform.Outcome{
		{Seq: 1, Check: conform.CheckBuf, Sample: 1, Pass: false, Automatic: true},
		{Seq: 2, Check: conform.CheckBuf, Sample: 2, Pass: true, Automatic: true, Degenerate: true},
		{Seq: 3, Check: conform.CheckClone, Sample: 1, Pass: true},
	}
	return r
}

func TestAssertTranscriptContains(t *testing.T) {
	r := testResult()
	assert.NoError(t, assertTranscriptContains(r, Assertion{Text: "Test 1 Failed"}))

	err := assertTranscriptContains(r, Assertion{Text: "Test 2"})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertTranscriptContains, ae.Type)
}

func TestAssertTranscriptAbsent(t *testing.T) {
	r := testResult()
	assert.NoError(t, assertTranscriptAbsent(r, Assertion{Text: "Passed"}))

	err := assertTranscriptAbsent(r, Assertion{Text: "Test 1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `found on line "   TestBuf:   Test 1 Failed"`)
}

func TestAssertTranscriptOrder(t *testing.T) {
	r := testResult()
	assert.NoError(t, assertTranscriptOrder(r, Assertion{Lines: []string{"Starting TestBuf", "Test 1 Failed", "Finished"}}))

	err := assertTranscriptOrder(r, Assertion{Lines: []string{"Finished", "Starting TestBuf"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not appear after")

	err = assertTranscriptOrder(r, Assertion{Lines: []string{"Starting", "Nowhere"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing "Nowhere"`)
}

func TestAssertTranscriptOrder_RepeatedText(t *testing.T) {
	r := NewResult()
	r.Transcript = "a\nb\na\n"
	assert.NoError(t, assertTranscriptOrder(r, Assertion{Lines: []string{"a", "b", "a"}}))
	assert.Error(t, assertTranscriptOrder(r, Assertion{Lines: []string{"b", "a", "b"}}))
}

func TestAssertCheckOutcome(t *testing.T) {
	r := testResult()

	assert.NoError(t, assertCheckOutcome(r, Assertion{Check: conform.CheckBuf, Sample: 1, Pass: boolPtr(false)}))
	assert.NoError(t, assertCheckOutcome(r, Assertion{Check: conform.CheckBuf, Sample: 2, Degenerate: boolPtr(true)}))

	// without a sample every buf outcome must match
	err := assertCheckOutcome(r, Assertion{Check: conform.CheckBuf, Pass: boolPtr(false)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seq 2 pass=true")
	assert.Contains(t, err.Error(), "Outcomes:")

	err = assertCheckOutcome(r, Assertion{Check: conform.CheckSpatialNorm, Pass: boolPtr(true)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such outcome")
}

func TestAssertOutcomeCount(t *testing.T) {
	r := testResult()
	assert.NoError(t, assertOutcomeCount(r, Assertion{Check: conform.CheckBuf, Count: 2}))
	assert.NoError(t, assertOutcomeCount(r, Assertion{Check: conform.CheckSum, Count: 0}))

	err := assertOutcomeCount(r, Assertion{Check: conform.CheckClone, Count: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recorded 1 time(s)")
}

func TestAssertNoLeaks(t *testing.T) {
	r := testResult()
	assert.NoError(t, assertNoLeaks(r))

	r.Live = 2
	err := assertNoLeaks(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 live, 0 double free(s)")

	r.Live, r.DoubleFrees = 0, 1
	assert.Error(t, assertNoLeaks(r))
}

func TestEvaluateAssertions(t *testing.T) {
	r := testResult()
	errs := EvaluateAssertions(r, []Assertion{
		{Type: AssertTranscriptContains, Text: "TestBuf"},
		{Type: AssertOutcomeCount, Check: conform.CheckBuf, Count: 5},
		{Type: AssertNoLeaks},
		{Type: "bogus"},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "outcome_count")
	assert.Contains(t, errs[1], `assertion[3]: unknown assertion type "bogus"`)
}

func TestLineAt(t *testing.T) {
	s := "one\ntwo\nthree"
	assert.Equal(t, "one", lineAt(s, 1))
	assert.Equal(t, "two", lineAt(s, 4))
	assert.Equal(t, "three", lineAt(s, 10))
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
