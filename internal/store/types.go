package store

import (
	"strings"

	"github.com/roach88/ptcheck/pkg/conform"
)

// Run is one stored conformance run.
type Run struct {
	ID     string  `json:"id"`
	Seq    int64   `json:"seq"` // assigned by WriteRun
	App    string   `json:"app"`
	Points int      `json:"points"`
	Faults []string `json:"faults"`
	T      float64  `json:"t"`
	FDT    float64  `json:"fdt"`
	CDT    float64  `json:"cdt"`
	Pass   bool     `json:"pass"`
	Digest string   `json:"digest"`
}

// RunSummary is a Run with counts from its outcomes.
type RunSummary struct {
	Run
	Outcomes int `json:"outcomes"`
	Failed   int `json:"failed"`
}

// joinFaults and splitFaults map a fault list to its column value.
func joinFaults(faults []string) string {
	return strings.Join(faults, ",")
}

func splitFaults(col string) []string {
	if col == "" {
		return []string{}
	}
	return strings.Split(col, ",")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// outcomeRow mirrors the outcomes table.
type outcomeRow struct {
	runID string
	conform.Outcome
}
