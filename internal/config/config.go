// Package config loads ptcheck run configuration from CUE or YAML files.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/ptcheck/internal/refvec"
)

//go:embed schema.cue
var schemaCUE string

// Config is a complete run configuration.
type Config struct {
	App     AppConfig     `yaml:"app" json:"app"`
	Times   TimesConfig   `yaml:"times" json:"times"`
	Report  ReportConfig  `yaml:"report" json:"report"`
	Store   StoreConfig   `yaml:"store" json:"store"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// AppConfig selects the vector implementation under test.
type AppConfig struct {
	Kind   string   `yaml:"kind" json:"kind"`
	Points int      `yaml:"points" json:"points"` // grid only; 0 means the default
	Faults []string `yaml:"faults" json:"faults"`
}

// TimesConfig holds the sample time and the two time-step sizes.
type TimesConfig struct {
	T   float64 `yaml:"t" json:"t"`
	FDT float64 `yaml:"fdt" json:"fdt"`
	CDT float64 `yaml:"cdt" json:"cdt"`
}

// ReportConfig controls transcript output.
type ReportConfig struct {
	PrimaryRank int `yaml:"primary_rank" json:"primary_rank"`
}

// StoreConfig locates the run history database. Empty disables it.
type StoreConfig struct {
	Path string `yaml:"path" json:"path"`
}

// MetricsConfig locates the metrics textfile. Empty disables it.
type MetricsConfig struct {
	File string `yaml:"file" json:"file"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		App:   AppConfig{Kind: refvec.KindScalar, Faults: []string{}},
		Times: TimesConfig{T: 1, FDT: 0.5, CDT: 2},
	}
}

// Validate checks the configuration for values no run could use.
func (c Config) Validate() error {
	var errs []error

	switch c.App.Kind {
	case refvec.KindScalar:
	case refvec.KindGrid:
		if c.App.Points != 0 {
			if _, err := refvec.NewGrid(c.App.Points, refvec.Options{}); err != nil {
				errs = append(errs, fmt.Errorf("app.points: %w", err))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("app.kind: unknown kind %q", c.App.Kind))
	}
	if c.App.Points < 0 {
		errs = append(errs, fmt.Errorf("app.points: must not be negative"))
	}
	if _, err := refvec.ParseFaults(c.App.Faults); err != nil {
		errs = append(errs, fmt.Errorf("app.faults: %w", err))
	}

	times := []struct {
		name string
		v    float64
	}{
		{"t", c.Times.T},
		{"fdt", c.Times.FDT},
		{"cdt", c.Times.CDT},
	}
	for _, tm := range times {
		if math.IsNaN(tm.v) || math.IsInf(tm.v, 0) {
			errs = append(errs, fmt.Errorf("times.%s: must be finite", tm.name))
		}
	}

	if c.Report.PrimaryRank < 0 {
		errs = append(errs, fmt.Errorf("report.primary_rank: must not be negative"))
	}

	return errors.Join(errs...)
}

// Load reads a configuration file, choosing the decoder by extension.
// Fields the file omits keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		cfg, err = ParseCUE(path, data)
	case ".yaml", ".yml":
		cfg, err = ParseYAML(data)
	default:
		return Config{}, fmt.Errorf("config %s: unsupported extension (want .cue, .yaml or .yml)", path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseYAML decodes YAML over the defaults. Unknown fields are rejected.
func ParseYAML(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	if cfg.App.Faults == nil {
		cfg.App.Faults = []string{}
	}
	return cfg, nil
}

// ParseCUE unifies a CUE document with the #Config schema and decodes the
// result. The document's top level is the configuration itself.
func ParseCUE(filename string, data []byte) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	doc := ctx.CompileBytes(data, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}

	v := def.Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, formatCUEError(err)
	}
	return cfg, nil
}

// Error is a configuration error with a source position when known.
type Error struct {
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &Error{Message: first.Error(), Pos: positions[0]}
	}
	return err
}
