package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ptcheck/internal/config"
	"github.com/roach88/ptcheck/internal/refvec"
	"github.com/roach88/ptcheck/pkg/conform"
)

// CheckAll runs the aggregate driver instead of a single check.
const CheckAll = "all"

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario shows.
	Description string `yaml:"description"`

	// App selects the reference vector.
	App AppSpec `yaml:"app"`

	// Times are the sample time and step sizes. Omitted fields keep the
	// defaults from config.DefaultConfig.
	Times config.TimesConfig `yaml:"times"`

	// Check is "all" or a single check name. Defaults to "all".
	Check string `yaml:"check"`

	// Access routes the vector's Access output into the transcript.
	// The aggregate driver never calls Access.
	Access bool `yaml:"access"`

	// Expect constrains the verdict.
	Expect Expect `yaml:"expect"`

	// Assertions validate the transcript and outcomes.
	Assertions []Assertion `yaml:"assertions"`
}

// AppSpec selects and configures a reference vector.
type AppSpec struct {
	Kind   string   `yaml:"kind"`
	Points int      `yaml:"points,omitempty"`
	Faults []string `yaml:"faults,omitempty"`
}

// Expect constrains the verdict. A nil Pass accepts either.
type Expect struct {
	Pass *bool `yaml:"pass,omitempty"`
}

// Assertion validates the transcript or the outcomes.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Text is the substring for transcript_contains and transcript_absent.
	Text string `yaml:"text,omitempty"`

	// Lines are the substrings for transcript_order, in expected order.
	Lines []string `yaml:"lines,omitempty"`

	// Check names the check for check_outcome and outcome_count.
	Check string `yaml:"check,omitempty"`

	// Sample narrows check_outcome to one sample (1 or 2). Zero matches any.
	Sample int `yaml:"sample,omitempty"`

	// Pass and Degenerate are the expected outcome fields for
	// check_outcome. Nil fields are not compared.
	Pass       *bool `yaml:"pass,omitempty"`
	Degenerate *bool `yaml:"degenerate,omitempty"`

	// Count is the expected number of outcomes for outcome_count.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTranscriptContains = "transcript_contains"
	AssertTranscriptAbsent   = "transcript_absent"
	AssertTranscriptOrder    = "transcript_order"
	AssertCheckOutcome       = "check_outcome"
	AssertOutcomeCount       = "outcome_count"
	AssertNoLeaks            = "no_leaks"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so that typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML and fills in defaults.
func ParseScenario(data []byte) (*Scenario, error) {
	scenario := Scenario{
		App:   AppSpec{Kind: refvec.KindScalar},
		Times: config.DefaultConfig().Times,
		Check: CheckAll,
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks required fields and field combinations.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	cfg := config.DefaultConfig()
	cfg.App = config.AppConfig{Kind: s.App.Kind, Points: s.App.Points, Faults: s.App.Faults}
	cfg.Times = s.Times
	if err := cfg.Validate(); err != nil {
		return err
	}

	if s.Check != CheckAll && !isCheckName(s.Check) {
		return fmt.Errorf("check: unknown check %q", s.Check)
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func isCheckName(name string) bool {
	for _, c := range conform.CheckNames {
		if c == name {
			return true
		}
	}
	return false
}

// validateAssertion checks that an assertion has the fields its type needs.
func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTranscriptContains, AssertTranscriptAbsent:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertTranscriptOrder:
		if len(a.Lines) < 2 {
			return fmt.Errorf("assertions[%d]: at least two lines are required for transcript_order", index)
		}
	case AssertCheckOutcome:
		if !isCheckName(a.Check) {
			return fmt.Errorf("assertions[%d]: unknown check %q for check_outcome", index, a.Check)
		}
		if a.Pass == nil && a.Degenerate == nil {
			return fmt.Errorf("assertions[%d]: pass or degenerate is required for check_outcome", index)
		}
		if a.Sample < 0 || a.Sample > 2 {
			return fmt.Errorf("assertions[%d]: sample must be 0, 1 or 2", index)
		}
	case AssertOutcomeCount:
		if !isCheckName(a.Check) {
			return fmt.Errorf("assertions[%d]: unknown check %q for outcome_count", index, a.Check)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for outcome_count", index)
		}
	case AssertNoLeaks:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
