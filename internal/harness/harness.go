package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/ptcheck/internal/canonical"
	"github.com/roach88/ptcheck/internal/refvec"
	"github.com/roach88/ptcheck/internal/store"
	"github.com/roach88/ptcheck/internal/testutil"
	"github.com/roach88/ptcheck/pkg/conform"
	"github.com/roach88/ptcheck/pkg/report"
)

// Option configures Run.
type Option func(*settings)

type settings struct {
	logger *slog.Logger
	obs    conform.Observer
	store  *store.Store
	ids    store.IDGenerator
}

// WithLogger sets the logger handed to the checks.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithObserver adds an observer alongside the scenario's own recorder.
func WithObserver(o conform.Observer) Option {
	return func(s *settings) { s.obs = o }
}

// WithStore writes each run to st under an ID from ids. A nil ids uses
// UUIDv7 IDs.
func WithStore(st *store.Store, ids store.IDGenerator) Option {
	return func(s *settings) {
		s.store = st
		s.ids = ids
	}
}

// Run executes a scenario and returns its result. An error means the
// scenario could not run at all; check failures are reported in the
// result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	s := settings{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&s)
	}

	faults, err := refvec.ParseFaults(scenario.App.Faults)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	var transcript bytes.Buffer
	rep := report.New(&transcript, report.StaticComm(0))

	vopts := refvec.Options{Faults: faults}
	if scenario.Access {
		vopts.Out = &transcript
	}

	clock := testutil.NewDeterministicClock()
	rec := conform.NewRecorder(clock)
	runner, tracked, err := refvec.Build(scenario.App.Kind, scenario.App.Points, vopts, rep,
		conform.WithLogger(s.logger),
		conform.WithObserver(conform.MultiObserver(rec, s.obs)),
	)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	times := scenario.Times
	result := NewResult()
	if scenario.Check == CheckAll {
		result.Verdict = runner.All(times.T, times.FDT, times.CDT)
	} else {
		pass, ok := runner.Run(scenario.Check, times.T, times.FDT, times.CDT)
		if !ok {
			return nil, fmt.Errorf("scenario %s: unknown check %q", scenario.Name, scenario.Check)
		}
		result.Verdict = pass
	}

	result.Transcript = transcript.String()
	result.Outcomes = rec.Outcomes()
	result.Live = tracked.Live()
	result.DoubleFrees = tracked.DoubleFrees()

	result.Points = refvec.PointsOf(tracked)
	result.Faults = refvec.FaultNames(faults)
	result.Digest, err = canonical.RunDigest(canonical.RunMeta{
		App:    scenario.App.Kind,
		Points: result.Points,
		Faults: result.Faults,
		T:      times.T,
		FDT:    times.FDT,
		CDT:    times.CDT,
	}, result.Outcomes)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	if s.store != nil {
		if err := record(&s, scenario, result); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
	}

	if exp := scenario.Expect.Pass; exp != nil && *exp != result.Verdict {
		result.AddError(fmt.Sprintf("expected verdict pass=%t, got pass=%t", *exp, result.Verdict))
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	s.logger.Debug("scenario finished",
		"scenario", scenario.Name,
		"verdict", result.Verdict,
		"pass", result.Pass,
		"outcomes", len(result.Outcomes),
	)
	return result, nil
}

// record writes the run to the configured store.
func record(s *settings, scenario *Scenario, result *Result) error {
	ids := s.ids
	if ids == nil {
		ids = store.UUIDv7Generator{}
	}
	run, err := s.store.WriteRun(context.Background(), store.Run{
		ID:     ids.Generate(),
		App:    scenario.App.Kind,
		Points: result.Points,
		Faults: result.Faults,
		T:      scenario.Times.T,
		FDT:    scenario.Times.FDT,
		CDT:    scenario.Times.CDT,
		Pass:   result.Verdict,
		Digest: result.Digest,
	}, result.Outcomes)
	if err != nil {
		return err
	}
	result.RunID = run.ID
	return nil
}
