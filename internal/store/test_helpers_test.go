package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/ptcheck/internal/canonical"
	"github.com/roach88/ptcheck/pkg/conform"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestOutcomes returns a short run with one failure.
func createTestOutcomes() []conform.Outcome {
	return []conform.Outcome{
		{Seq: 1, Check: conform.CheckInitAccess, Sample: 1, T: 1, Pass: true},
		{Seq: 2, Check: conform.CheckSpatialNorm, Sample: 1, T: 1, Pass: true, Automatic: true},
		{Seq: 3, Check: conform.CheckBuf, Sample: 1, T: 1, Pass: false, Automatic: true, Degenerate: true},
	}
}

// createTestRun builds a run whose digest matches outcomes.
func createTestRun(t *testing.T, id string, outcomes []conform.Outcome) Run {
	t.Helper()
	return createTestRunFrom(t, Run{ID: id, App: "scalar", Faults: []string{}, T: 1, FDT: 0.5, CDT: 2}, outcomes)
}

// createTestRunFrom fills in the verdict and digest of run from outcomes.
func createTestRunFrom(t *testing.T, run Run, outcomes []conform.Outcome) Run {
	t.Helper()
	run.Pass = true
	for _, o := range outcomes {
		if o.Automatic && !o.Pass {
			run.Pass = false
		}
	}
	digest, err := canonical.RunDigest(canonical.RunMeta{
		App: run.App, Points: run.Points, Faults: run.Faults, T: run.T, FDT: run.FDT, CDT: run.CDT,
	}, outcomes)
	if err != nil {
		t.Fatalf("RunDigest() failed: %v", err)
	}
	run.Digest = digest
	return run
}
