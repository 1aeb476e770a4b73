package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/ptcheck/pkg/conform"
)

// ReadRun retrieves a run by ID. Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, app, points, faults, t, fdt, cdt, pass, digest
		FROM runs
		WHERE id = ?
	`, id)
	return scanRun(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var faults string
	if err := row.Scan(&r.ID, &r.Seq, &r.App, &r.Points, &faults, &r.T, &r.FDT, &r.CDT, &r.Pass, &r.Digest); err != nil {
		if err == sql.ErrNoRows {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	r.Faults = splitFaults(faults)
	return r, nil
}

// ListRuns returns summaries of the most recent runs, oldest first.
// A limit of zero or less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT * FROM (
			SELECT r.id, r.seq, r.app, r.points, r.faults, r.t, r.fdt, r.cdt, r.pass, r.digest,
			       COUNT(o.seq),
			       COALESCE(SUM(CASE WHEN o.automatic = 1 AND o.pass = 0 THEN 1 ELSE 0 END), 0)
			FROM runs r
			LEFT JOIN outcomes o ON o.run_id = r.id
			GROUP BY r.id
			ORDER BY r.seq DESC
			LIMIT ?
		)
		ORDER BY seq ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	summaries := []RunSummary{}
	for rows.Next() {
		var rs RunSummary
		var faults string
		if err := rows.Scan(&rs.ID, &rs.Seq, &rs.App, &rs.Points, &faults, &rs.T, &rs.FDT, &rs.CDT, &rs.Pass, &rs.Digest,
			&rs.Outcomes, &rs.Failed); err != nil {
			return nil, fmt.Errorf("scan run summary: %w", err)
		}
		rs.Faults = splitFaults(faults)
		summaries = append(summaries, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return summaries, nil
}

// RunOutcomes returns the outcomes of a run ordered by seq. Returns an
// empty slice (not nil) for an unknown run.
func (s *Store) RunOutcomes(ctx context.Context, runID string) ([]conform.Outcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, check_name, sample, t, pass, degenerate, automatic
		FROM outcomes
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []conform.Outcome{}
	for rows.Next() {
		var r outcomeRow
		if err := rows.Scan(&r.runID, &r.Seq, &r.Check, &r.Sample, &r.T, &r.Pass, &r.Degenerate, &r.Automatic); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcomes = append(outcomes, r.Outcome)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return outcomes, nil
}

// CheckFailures counts failed automatic outcomes per check across every
// stored run, for checks that failed at least once.
func (s *Store) CheckFailures(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT check_name, COUNT(*)
		FROM outcomes
		WHERE automatic = 1 AND pass = 0
		GROUP BY check_name
		ORDER BY check_name
	`)
	if err != nil {
		return nil, fmt.Errorf("check failures: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan check failures: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}
