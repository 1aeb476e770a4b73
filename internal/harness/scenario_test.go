package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/grid_truncated_pack.yaml")
	require.NoError(t, err)

	assert.Equal(t, "grid_truncated_pack", scenario.Name)
	assert.Equal(t, "grid", scenario.App.Kind)
	assert.Equal(t, 9, scenario.App.Points)
	assert.Equal(t, []string{"truncate-pack"}, scenario.App.Faults)
	assert.Equal(t, CheckAll, scenario.Check)
	require.NotNil(t, scenario.Expect.Pass)
	assert.False(t, *scenario.Expect.Pass)
	assert.Len(t, scenario.Assertions, 5)
}

func TestLoadScenario_AllTestdataParses(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		_, err := LoadScenario(f)
		assert.NoError(t, err, f)
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Defaults(t *testing.T) {
	scenario, err := ParseScenario([]byte("name: minimal\n"))
	require.NoError(t, err)

	assert.Equal(t, "scalar", scenario.App.Kind)
	assert.Equal(t, CheckAll, scenario.Check)
	assert.Equal(t, 1.0, scenario.Times.T)
	assert.Equal(t, 0.5, scenario.Times.FDT)
	assert.Equal(t, 2.0, scenario.Times.CDT)
	assert.Nil(t, scenario.Expect.Pass)
	assert.False(t, scenario.Access)
}

func TestParseScenario_PartialTimesKeepDefaults(t *testing.T) {
	scenario, err := ParseScenario([]byte("name: x\ntimes:\n  cdt: 8\n"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, scenario.Times.T)
	assert.Equal(t, 8.0, scenario.Times.CDT)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{"missing name", "check: all\n", "name is required"},
		{"typo field", "name: x\nasertions: []\n", "asertions"},
		{"unknown check", "name: x\ncheck: frobnicate\n", `unknown check "frobnicate"`},
		{"unknown kind", "name: x\napp: {kind: tensor}\n", "app.kind"},
		{"bad grid", "name: x\napp: {kind: grid, points: 6}\n", "app.points"},
		{"unknown fault", "name: x\napp: {faults: [melt]}\n", "app.faults"},
		{"assertion without type", "name: x\nassertions:\n  - text: hi\n", "type is required"},
		{"unknown assertion", "name: x\nassertions:\n  - type: trace_count\n", `unknown assertion type "trace_count"`},
		{"contains without text", "name: x\nassertions:\n  - type: transcript_contains\n", "text is required"},
		{"order with one line", "name: x\nassertions:\n  - type: transcript_order\n    lines: [a]\n", "at least two lines"},
		{"outcome unknown check", "name: x\nassertions:\n  - type: check_outcome\n    check: nope\n    pass: true\n", "unknown check \"nope\""},
		{"outcome without fields", "name: x\nassertions:\n  - type: check_outcome\n    check: buf\n", "pass or degenerate is required"},
		{"outcome bad sample", "name: x\nassertions:\n  - type: check_outcome\n    check: buf\n    sample: 3\n    pass: true\n", "sample must be"},
		{"negative count", "name: x\nassertions:\n  - type: outcome_count\n    check: buf\n    count: -1\n", "count must be non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadScenario_FromTempFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yml")
	require.NoError(t, os.WriteFile(path, []byte("name: temp\ncheck: buf\n"), 0o644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "buf", scenario.Check)
}
