package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/ptcheck/internal/canonical"
)

// Snapshot returns the canonical JSON that golden files hold for a
// scenario result: the verdict and every outcome with its sequence number.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	outcomes := make(canonical.Array, len(result.Outcomes))
	for i, o := range result.Outcomes {
		v := canonical.OutcomeValue(o)
		v["seq"] = canonical.Int(o.Seq)
		outcomes[i] = v
	}

	return canonical.Marshal(canonical.Object{
		"scenario": canonical.String(scenario.Name),
		"app":      canonical.String(scenario.App.Kind),
		"check":    canonical.String(scenario.Check),
		"pass":     canonical.Bool(result.Verdict),
		"outcomes": outcomes,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}

// GoldenPath returns the golden file for a scenario file: a sibling
// golden/ directory holding <base>.golden.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// UpdateGolden writes the snapshot of result as the golden file.
func UpdateGolden(scenarioFile string, scenario *Scenario, result *Result) error {
	data, err := Snapshot(scenario, result)
	if err != nil {
		return fmt.Errorf("failed to snapshot result: %w", err)
	}

	path := GoldenPath(scenarioFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the golden file for scenarioFile matches
// result. exists is false when there is no golden file.
func CompareGolden(scenarioFile string, scenario *Scenario, result *Result) (match, exists bool, err error) {
	want, err := os.ReadFile(GoldenPath(scenarioFile))
	if os.IsNotExist(err) {
		return false, false, nil
	}
	if err != nil {
		return false, true, fmt.Errorf("failed to read golden file: %w", err)
	}

	got, err := Snapshot(scenario, result)
	if err != nil {
		return false, true, fmt.Errorf("failed to snapshot result: %w", err)
	}
	return bytes.Equal(bytes.TrimRight(want, "\n"), got), true, nil
}
