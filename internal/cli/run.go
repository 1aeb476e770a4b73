package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ptcheck/internal/canonical"
	"github.com/roach88/ptcheck/internal/config"
	"github.com/roach88/ptcheck/internal/metrics"
	"github.com/roach88/ptcheck/internal/refvec"
	"github.com/roach88/ptcheck/internal/store"
	"github.com/roach88/ptcheck/pkg/conform"
	"github.com/roach88/ptcheck/pkg/report"
)

// AppFlags are the flags shared by the all and check commands. Flags the
// user sets override the config file; the rest keep the file's values.
type AppFlags struct {
	Config      string
	Kind        string
	Points      int
	Faults      []string
	T           float64
	FDT         float64
	CDT         float64
	DB          string
	MetricsFile string

	// IDs generates run IDs for the history database. Nil means UUIDv7.
	IDs store.IDGenerator
}

func (f *AppFlags) register(cmd *cobra.Command) {
	defaults := config.DefaultConfig()
	cmd.Flags().StringVarP(&f.Config, "config", "c", "", "run configuration file (.cue, .yaml or .yml)")
	cmd.Flags().StringVar(&f.Kind, "kind", defaults.App.Kind, "reference vector kind (scalar|grid)")
	cmd.Flags().IntVar(&f.Points, "points", 0, "grid points on the finest level (grid only)")
	cmd.Flags().StringSliceVar(&f.Faults, "fault", nil, "inject a fault into the reference vector (repeatable)")
	cmd.Flags().Float64Var(&f.T, "t", defaults.Times.T, "sample time")
	cmd.Flags().Float64Var(&f.FDT, "fdt", defaults.Times.FDT, "fine time step")
	cmd.Flags().Float64Var(&f.CDT, "cdt", defaults.Times.CDT, "coarse time step")
	cmd.Flags().StringVar(&f.DB, "db", "", "record the run in this SQLite database")
	cmd.Flags().StringVar(&f.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
}

// resolve loads the config file, if any, and applies explicitly set flags.
func (f *AppFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.DefaultConfig()
	if f.Config != "" {
		loaded, err := config.Load(f.Config)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("kind") {
		cfg.App.Kind = f.Kind
	}
	if changed("points") {
		cfg.App.Points = f.Points
	}
	if changed("fault") {
		cfg.App.Faults = f.Faults
	}
	if changed("t") {
		cfg.Times.T = f.T
	}
	if changed("fdt") {
		cfg.Times.FDT = f.FDT
	}
	if changed("cdt") {
		cfg.Times.CDT = f.CDT
	}
	if changed("db") {
		cfg.Store.Path = f.DB
	}
	if changed("metrics-file") {
		cfg.Metrics.File = f.MetricsFile
	}

	return cfg, cfg.Validate()
}

// RunReport is the data returned by the all and check commands.
type RunReport struct {
	RunID    string            `json:"run_id,omitempty"`
	App      string            `json:"app"`
	Points   int               `json:"points"`
	Faults   []string          `json:"faults"`
	Check    string            `json:"check"`
	T        float64           `json:"t"`
	FDT      float64           `json:"fdt"`
	CDT      float64           `json:"cdt"`
	Pass     bool              `json:"pass"`
	Digest   string            `json:"digest"`
	Outcomes []conform.Outcome `json:"outcomes"`
	Live     int               `json:"live_vectors"`
}

func (r RunReport) String() string {
	verdict := "PASS"
	if !r.Pass {
		verdict = "FAIL"
	}
	s := fmt.Sprintf("%s %s on %s (%d outcomes, digest %.12s)", verdict, r.Check, r.App, len(r.Outcomes), r.Digest)
	if r.RunID != "" {
		s += fmt.Sprintf(", recorded as %s", r.RunID)
	}
	return s
}

// execute builds the configured reference vector, hands the runner to
// drive, and records the outcome to the database and metrics textfile.
func execute(ctx context.Context, root *RootOptions, flags *AppFlags, cmd *cobra.Command, check string, drive func(conform.Runner, config.TimesConfig) (bool, error)) error {
	out := &OutputFormatter{
		Format:    root.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   root.Verbose,
	}
	log := root.logger()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := flags.resolve(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	faults, err := refvec.ParseFaults(cfg.App.Faults)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	transcript := out.Transcript()
	rep := report.New(transcript, root.comm(cmd), report.WithPrimary(root.primary(cmd, cfg.Report.PrimaryRank)))

	rec := conform.NewRecorder(nil)
	observers := []conform.Observer{rec}
	var collector *metrics.Collector
	if cfg.Metrics.File != "" {
		collector = metrics.New()
		observers = append(observers, collector)
	}

	vopts := refvec.Options{Faults: faults}
	if rep.IsPrimary() {
		vopts.Out = transcript
	}
	runner, tracked, err := refvec.Build(cfg.App.Kind, cfg.App.Points, vopts, rep,
		conform.WithLogger(log),
		conform.WithObserver(conform.MultiObserver(observers...)),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build vector", err)
	}

	log.Debug("running conformance checks",
		"app", cfg.App.Kind,
		"check", check,
		"t", cfg.Times.T,
		"fdt", cfg.Times.FDT,
		"cdt", cfg.Times.CDT,
	)
	pass, err := drive(runner, cfg.Times)
	if err != nil {
		return err
	}

	result := RunReport{
		App:      cfg.App.Kind,
		Points:   refvec.PointsOf(tracked),
		Faults:   refvec.FaultNames(faults),
		Check:    check,
		T:        cfg.Times.T,
		FDT:      cfg.Times.FDT,
		CDT:      cfg.Times.CDT,
		Pass:     pass,
		Outcomes: rec.Outcomes(),
		Live:     tracked.Live(),
	}
	if tracked.Live() != 0 || tracked.DoubleFrees() != 0 {
		log.Warn("vector lifecycle imbalance", "live", tracked.Live(), "double_frees", tracked.DoubleFrees())
	}

	result.Digest, err = canonical.RunDigest(canonical.RunMeta{
		App:    result.App,
		Points: result.Points,
		Faults: result.Faults,
		T:      result.T,
		FDT:    result.FDT,
		CDT:    result.CDT,
	}, result.Outcomes)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to digest outcomes", err)
	}

	if cfg.Store.Path != "" {
		id, err := recordRun(ctx, cfg.Store.Path, flags.IDs, result)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		result.RunID = id
		log.Info("run recorded", "db", cfg.Store.Path, "run", id)
	}

	if collector != nil {
		collector.RunFinished(result.App, pass)
		if err := collector.WriteTextfile(cfg.Metrics.File); err != nil {
			return WrapExitError(ExitCommandError, "failed to write metrics", err)
		}
		out.VerboseLog("metrics written to %s", cfg.Metrics.File)
	}

	if !pass {
		if err := out.Failure(CodeCheckFailed, fmt.Sprintf("%s failed", check), result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "conformance checks failed")
	}
	return out.Success(result)
}

func recordRun(ctx context.Context, path string, ids store.IDGenerator, r RunReport) (string, error) {
	if ids == nil {
		ids = store.UUIDv7Generator{}
	}
	st, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer st.Close()

	run, err := st.WriteRun(ctx, store.Run{
		ID:     ids.Generate(),
		App:    r.App,
		Points: r.Points,
		Faults: r.Faults,
		T:      r.T,
		FDT:    r.FDT,
		CDT:    r.CDT,
		Pass:   r.Pass,
		Digest: r.Digest,
	}, r.Outcomes)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}
