package store

import (
	"context"
	"fmt"

	"github.com/roach88/ptcheck/pkg/conform"
)

// WriteRun inserts a run and its outcomes in one transaction and returns
// the run with Seq assigned. A run whose ID already exists is left alone
// and returned as stored.
func (s *Store) WriteRun(ctx context.Context, run Run, outcomes []conform.Outcome) (Run, error) {
	if run.ID == "" {
		return Run{}, fmt.Errorf("write run: empty id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, run.ID).Scan(&exists); err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	if exists > 0 {
		if err := tx.Commit(); err != nil {
			return Run{}, fmt.Errorf("write run: commit: %w", err)
		}
		return s.ReadRun(ctx, run.ID)
	}

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, app, points, faults, t, fdt, cdt, pass, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Seq, run.App, run.Points, joinFaults(run.Faults), run.T, run.FDT, run.CDT, boolInt(run.Pass), run.Digest)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outcomes (run_id, seq, check_name, sample, t, pass, degenerate, automatic)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("write run: prepare outcomes: %w", err)
	}
	defer stmt.Close()

	for i, o := range outcomes {
		seq := o.Seq
		if seq == 0 {
			seq = int64(i + 1)
		}
		_, err := stmt.ExecContext(ctx, run.ID, seq, o.Check, o.Sample, o.T,
			boolInt(o.Pass), boolInt(o.Degenerate), boolInt(o.Automatic))
		if err != nil {
			return Run{}, fmt.Errorf("write run: outcome %d (%s): %w", i, o.Check, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}
