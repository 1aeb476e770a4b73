package store

import (
	"context"
	"fmt"

	"github.com/roach88/ptcheck/internal/canonical"
)

// DigestMismatchError reports a stored run whose outcomes no longer hash
// to the recorded digest.
type DigestMismatchError struct {
	RunID    string
	Stored   string
	Computed string
}

func (e *DigestMismatchError) Error() string {
	return fmt.Sprintf("run %s: stored digest %s does not match outcomes (%s)", e.RunID, e.Stored, e.Computed)
}

// VerifyRun recomputes the digest of a stored run from its outcome rows
// and compares it with the recorded one.
func (s *Store) VerifyRun(ctx context.Context, id string) error {
	run, err := s.ReadRun(ctx, id)
	if err != nil {
		return fmt.Errorf("verify run %s: %w", id, err)
	}
	outcomes, err := s.RunOutcomes(ctx, id)
	if err != nil {
		return fmt.Errorf("verify run %s: %w", id, err)
	}

	computed, err := canonical.RunDigest(canonical.RunMeta{
		App: run.App, Points: run.Points, Faults: run.Faults, T: run.T, FDT: run.FDT, CDT: run.CDT,
	}, outcomes)
	if err != nil {
		return fmt.Errorf("verify run %s: %w", id, err)
	}
	if computed != run.Digest {
		return &DigestMismatchError{RunID: id, Stored: run.Digest, Computed: computed}
	}
	return nil
}

// SameObservations reports whether two stored runs made identical
// observations, by digest.
func (s *Store) SameObservations(ctx context.Context, a, b string) (bool, error) {
	ra, err := s.ReadRun(ctx, a)
	if err != nil {
		return false, fmt.Errorf("read run %s: %w", a, err)
	}
	rb, err := s.ReadRun(ctx, b)
	if err != nil {
		return false, fmt.Errorf("read run %s: %w", b, err)
	}
	return ra.Digest == rb.Digest, nil
}
