package refvec

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Fault is a deliberate defect injected into a reference vector.
type Fault string

const (
	// FaultZeroInit makes Init return the zero vector for every t.
	FaultZeroInit Fault = "zero-init"

	// FaultTruncatePack makes BufPack omit the last byte of the encoding.
	FaultTruncatePack Fault = "truncate-pack"

	// FaultNoisyCoarsen perturbs every Coarsen result randomly.
	FaultNoisyCoarsen Fault = "noisy-coarsen"

	// FaultNoisyRefine perturbs every Refine result randomly.
	FaultNoisyRefine Fault = "noisy-refine"
)

// KnownFaults lists every supported fault.
var KnownFaults = []Fault{FaultZeroInit, FaultTruncatePack, FaultNoisyCoarsen, FaultNoisyRefine}

// Options configures a reference vector implementation.
type Options struct {
	// Faults to inject.
	Faults []Fault

	// Out receives Access output. Nil discards it.
	Out io.Writer
}

func (o Options) has(f Fault) bool {
	for _, x := range o.Faults {
		if x == f {
			return true
		}
	}
	return false
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return io.Discard
	}
	return o.Out
}

// ParseFaults converts fault names to Faults, rejecting unknown names.
func ParseFaults(names []string) ([]Fault, error) {
	faults := make([]Fault, 0, len(names))
	for _, name := range names {
		f := Fault(strings.TrimSpace(name))
		if f == "" {
			continue
		}
		known := false
		for _, k := range KnownFaults {
			if f == k {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown fault %q (known: %s)", name, faultList())
		}
		faults = append(faults, f)
	}
	return faults, nil
}

func faultList() string {
	names := make([]string, len(KnownFaults))
	for i, f := range KnownFaults {
		names[i] = string(f)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// tracker counts vector lifetimes.
type tracker struct {
	created     int
	live        int
	doubleFrees int
}

func (tr *tracker) alloc() {
	tr.created++
	tr.live++
}

// release returns false if the vector was already freed.
func (tr *tracker) release(freed *bool) bool {
	if *freed {
		tr.doubleFrees++
		return false
	}
	*freed = true
	tr.live--
	return true
}

// Live returns the number of vectors created and not yet freed.
func (tr *tracker) Live() int { return tr.live }

// Created returns the number of vectors ever created.
func (tr *tracker) Created() int { return tr.created }

// DoubleFrees returns how many times Free was called on a freed vector.
func (tr *tracker) DoubleFrees() int { return tr.doubleFrees }

// Tracked is implemented by the reference vectors.
type Tracked interface {
	Live() int
	Created() int
	DoubleFrees() int
}

// FaultNames returns the names of faults in order.
func FaultNames(faults []Fault) []string {
	names := make([]string, len(faults))
	for i, f := range faults {
		names[i] = string(f)
	}
	return names
}
