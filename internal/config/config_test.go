package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "scalar", cfg.App.Kind)
	assert.Equal(t, 1.0, cfg.Times.T)
	assert.Equal(t, 0.5, cfg.Times.FDT)
	assert.Equal(t, 2.0, cfg.Times.CDT)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown kind", func(c *Config) { c.App.Kind = "tensor" }, `unknown kind "tensor"`},
		{"bad grid size", func(c *Config) { c.App.Kind = "grid"; c.App.Points = 10 }, "app.points"},
		{"negative points", func(c *Config) { c.App.Points = -1 }, "must not be negative"},
		{"unknown fault", func(c *Config) { c.App.Faults = []string{"boom"} }, "app.faults"},
		{"nan time", func(c *Config) { c.Times.FDT = math.NaN() }, "times.fdt: must be finite"},
		{"inf time", func(c *Config) { c.Times.T = math.Inf(1) }, "times.t: must be finite"},
		{"negative rank", func(c *Config) { c.Report.PrimaryRank = -2 }, "report.primary_rank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_ErrorOrderIsStable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Times.T = math.NaN()
	cfg.Times.FDT = math.Inf(-1)
	cfg.Times.CDT = math.NaN()
	cfg.Report.PrimaryRank = -1

	want := "times.t: must be finite\n" +
		"times.fdt: must be finite\n" +
		"times.cdt: must be finite\n" +
		"report.primary_rank: must not be negative"
	for i := 0; i < 20; i++ {
		err := cfg.Validate()
		require.Error(t, err)
		assert.Equal(t, want, err.Error())
	}
}

func TestValidate_GridDefaultPoints(t *testing.T) {
	cfg := DefaultConfig()
	cfg.App.Kind = "grid"
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
app:
  kind: grid
  points: 9
  faults: [truncate-pack]
times:
  fdt: 0.25
store:
  path: history.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "grid", cfg.App.Kind)
	assert.Equal(t, 9, cfg.App.Points)
	assert.Equal(t, []string{"truncate-pack"}, cfg.App.Faults)
	assert.Equal(t, 1.0, cfg.Times.T)
	assert.Equal(t, 0.25, cfg.Times.FDT)
	assert.Equal(t, "history.db", cfg.Store.Path)
}

func TestLoad_YAMLUnknownField(t *testing.T) {
	path := writeFile(t, "run.yml", "app:\n  flavour: grid\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flavour")
}

func TestLoad_YAMLEmpty(t *testing.T) {
	path := writeFile(t, "run.yaml", "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_YAMLInvalidValue(t *testing.T) {
	path := writeFile(t, "run.yaml", "app:\n  kind: tensor\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.kind")
}

func TestLoad_CUE(t *testing.T) {
	path := writeFile(t, "run.cue", `
app: {
	kind:   "grid"
	points: 5
	faults: ["noisy-coarsen"]
}
times: cdt: 4
metrics: file: "out.prom"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "grid", cfg.App.Kind)
	assert.Equal(t, 5, cfg.App.Points)
	assert.Equal(t, []string{"noisy-coarsen"}, cfg.App.Faults)
	assert.Equal(t, 1.0, cfg.Times.T)
	assert.Equal(t, 0.5, cfg.Times.FDT)
	assert.Equal(t, 4.0, cfg.Times.CDT)
	assert.Equal(t, "out.prom", cfg.Metrics.File)
}

func TestLoad_CUEDefaults(t *testing.T) {
	path := writeFile(t, "run.cue", "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "scalar", cfg.App.Kind)
	assert.Empty(t, cfg.App.Faults)
	assert.Equal(t, 2.0, cfg.Times.CDT)
}

func TestLoad_CUERejectsSchemaViolations(t *testing.T) {
	tests := map[string]string{
		"unknown kind":  `app: kind: "tensor"`,
		"unknown fault": `app: faults: ["boom"]`,
		"closed struct": `extra: 1`,
		"negative":      `app: points: -3`,
		"wrong type":    `times: t: "soon"`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "run.cue", src))
			assert.Error(t, err)
		})
	}
}

func TestLoad_CUESyntaxErrorHasPosition(t *testing.T) {
	_, err := Load(writeFile(t, "broken.cue", "app: {\n  kind: \n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.cue")
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load(writeFile(t, "run.toml", "x = 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported extension")
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestError_Format(t *testing.T) {
	assert.Equal(t, "bad", (&Error{Message: "bad"}).Error())
}
