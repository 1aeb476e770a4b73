package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/ptcheck/pkg/conform"
)

// Domain prefixes for digests. The version suffix allows the encoding to
// change without colliding with old digests.
const (
	DomainRun     = "ptcheck/run/v1"
	DomainOutcome = "ptcheck/outcome/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RunMeta identifies what a run was asked to do.
type RunMeta struct {
	App    string
	Points int
	Faults []string
	T      float64
	FDT    float64
	CDT    float64
}

// OutcomeValue encodes an outcome. Seq is omitted so that the same checks
// run under different clocks produce the same digest.
func OutcomeValue(o conform.Outcome) Object {
	return Object{
		"check":      String(o.Check),
		"sample":     Int(o.Sample),
		"t":          Float(o.T),
		"pass":       Bool(o.Pass),
		"degenerate": Bool(o.Degenerate),
		"automatic":  Bool(o.Automatic),
	}
}

// OutcomeDigest returns the digest of a single outcome.
func OutcomeDigest(o conform.Outcome) (string, error) {
	data, err := Marshal(OutcomeValue(o))
	if err != nil {
		return "", fmt.Errorf("OutcomeDigest: %w", err)
	}
	return hashWithDomain(DomainOutcome, data), nil
}

// RunDigest returns the digest of a run: its parameters and its outcomes
// in order. Two runs with equal digests made the same observations.
func RunDigest(meta RunMeta, outcomes []conform.Outcome) (string, error) {
	arr := make(Array, len(outcomes))
	for i, o := range outcomes {
		arr[i] = OutcomeValue(o)
	}
	faults := make(Array, len(meta.Faults))
	for i, f := range meta.Faults {
		faults[i] = String(f)
	}
	obj := Object{
		"app":      String(meta.App),
		"points":   Int(meta.Points),
		"faults":   faults,
		"t":        Float(meta.T),
		"fdt":      Float(meta.FDT),
		"cdt":      Float(meta.CDT),
		"outcomes": arr,
	}
	data, err := Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("RunDigest: %w", err)
	}
	return hashWithDomain(DomainRun, data), nil
}
