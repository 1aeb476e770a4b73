package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ptcheck/internal/harness"
)

const passingScenario = `name: scalar_ok
app:
  kind: scalar
check: spatial_norm
expect:
  pass: true
assertions:
  - type: outcome_count
    check: spatial_norm
    count: 1
`

const failingScenario = `name: grid_lossy
app:
  kind: grid
  points: 9
  faults: [truncate-pack]
check: buf
expect:
  pass: true
`

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScenarioCommandMissingArgs(t *testing.T) {
	_, _, err := execRoot(t, "scenario")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestScenarioCommandNonExistentDir(t *testing.T) {
	_, _, err := execRoot(t, "scenario", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestScenarioCommandEmptyDir(t *testing.T) {
	stdout, _, err := execRoot(t, "scenario", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")
}

func TestScenarioCommandEmptyDirJSON(t *testing.T) {
	stdout, _, err := execRoot(t, "--format", "json", "scenario", t.TempDir())
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestScenarioCommandPassAndFail(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "scalar_ok.yaml", passingScenario)
	writeScenario(t, dir, "grid_lossy.yaml", failingScenario)

	stdout, _, err := execRoot(t, "scenario", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, stdout, "✓ scalar_ok")
	assert.Contains(t, stdout, "✗ grid_lossy")
	assert.Contains(t, stdout, "expected verdict pass=true, got pass=false")
	assert.Contains(t, stdout, "Scenario Summary: 1 passed, 1 failed, 2 total")
}

func TestScenarioCommandJSON(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "scalar_ok.yaml", passingScenario)
	writeScenario(t, dir, "grid_lossy.yaml", failingScenario)

	stdout, _, err := execRoot(t, "--format", "json", "scenario", dir)
	require.Error(t, err)

	var resp struct {
		CLIResponse
		Data ScenarioSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeScenarioFailed, resp.Error.Code)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Failed)
}

func TestScenarioCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yaml", "name: broken\nbogus_field: 1\n")

	stdout, _, err := execRoot(t, "scenario", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "✗ broken.yaml")
	assert.Contains(t, stdout, "failed to load scenario")
}

func TestScenarioCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "scalar_ok.yaml", passingScenario)
	writeScenario(t, dir, "grid_lossy.yaml", failingScenario)

	stdout, _, err := execRoot(t, "scenario", dir, "--filter", "scalar_*")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ scalar_ok")
	assert.NotContains(t, stdout, "grid_lossy")
}

func TestScenarioCommandInvalidFilter(t *testing.T) {
	_, _, err := execRoot(t, "scenario", t.TempDir(), "--filter", "[unclosed")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestScenarioCommandUpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	file := writeScenario(t, dir, "scalar_ok.yaml", passingScenario)

	stdout, _, err := execRoot(t, "scenario", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ scalar_ok (golden updated)")
	assert.FileExists(t, harness.GoldenPath(file))

	stdout, _, err = execRoot(t, "scenario", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ scalar_ok\n")

	require.NoError(t, os.WriteFile(harness.GoldenPath(file), []byte(`{"pass":false}`), 0o644))
	stdout, _, err = execRoot(t, "scenario", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "outcomes do not match golden file")
}

func TestScenarioCommandRecordsRuns(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "scalar_ok.yaml", passingScenario)
	db := filepath.Join(t.TempDir(), "runs.db")

	stdout, _, err := execRoot(t, "--format", "json", "scenario", dir, "--db", db)
	require.NoError(t, err)

	var resp struct {
		CLIResponse
		Data ScenarioSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Scenarios, 1)
	assert.NotEmpty(t, resp.Data.Scenarios[0].RunID)

	stdout, _, err = execRoot(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, resp.Data.Scenarios[0].RunID)
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.yaml", passingScenario)
	writeScenario(t, dir, "b.yml", passingScenario)
	writeScenario(t, dir, "notes.txt", "ignored")
	writeScenario(t, dir, "golden/a.golden", "{}")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindScenarioFilesDoublestarFilter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "grid_top.yaml", passingScenario)
	writeScenario(t, dir, "faults/grid_lossy.yaml", failingScenario)
	writeScenario(t, dir, "faults/deep/grid_noisy.yaml", failingScenario)
	writeScenario(t, dir, "faults/scalar_zero.yaml", passingScenario)

	files, err := findScenarioFiles(dir, "grid_*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "grid_top.yaml")}, files)

	files, err = findScenarioFiles(dir, "**/grid_*")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	files, err = findScenarioFiles(dir, "faults/*")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
