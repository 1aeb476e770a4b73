package conform

// All runs every check at time t and again at time fdt, then the
// coarsen/refine check once when both operators are available, from
// WithCoarsenRefine or from the App's own methods. Access
// output is suppressed: All reports only verdicts.
//
// Every check runs regardless of earlier failures. All returns true only if
// every automatic check passed.
func (h *Tester[V]) All(t, fdt, cdt float64) bool {
	correct := true
	times := []float64{t, fdt}
	defer func() { h.sample = 0 }()

	for i, ts := range times {
		h.sample = i + 1
		h.InitAccess(ts, nil)
	}
	for i, ts := range times {
		h.sample = i + 1
		h.Clone(ts, nil)
	}
	for i, ts := range times {
		h.sample = i + 1
		h.Sum(ts, nil)
	}
	for i, ts := range times {
		h.sample = i + 1
		if !h.SpatialNorm(ts) {
			h.rep.Printf("-> TestAll:   TestSpatialNorm %d Failed\n", i+1)
			correct = false
		}
	}
	for i, ts := range times {
		h.sample = i + 1
		if !h.Buf(ts) {
			h.rep.Printf("-> TestAll:   TestBuf %d Failed\n", i+1)
			correct = false
		}
	}

	if h.coarsen != nil && h.refine != nil {
		h.sample = 1
		if !h.CoarsenRefine(t, fdt, cdt, nil, h.coarsen, h.refine) {
			h.rep.Printf("-> TestAll:   TestCoarsenRefine 1 Failed\n")
			correct = false
		}
	}

	h.rep.Printf("\n\n")
	if correct {
		h.rep.Printf("Finished TestAll: all tests passed successfully\n\n")
	} else {
		h.rep.Printf("Finished TestAll: some tests failed\n\n")
	}

	h.logger.Info("conformance run finished", "t", t, "fdt", fdt, "cdt", cdt, "pass", correct)
	return correct
}

// Run dispatches a single check by name with diagnostic access enabled
// when an Accessor is available. Unknown names return false and ok=false.
func (h *Tester[V]) Run(check string, t, fdt, cdt float64) (pass, ok bool) {
	acc := h.acc
	switch check {
	case CheckInitAccess:
		return h.InitAccess(t, acc), true
	case CheckClone:
		return h.Clone(t, acc), true
	case CheckSum:
		return h.Sum(t, acc), true
	case CheckSpatialNorm:
		return h.SpatialNorm(t), true
	case CheckBuf:
		return h.Buf(t), true
	case CheckCoarsenRefine:
		return h.CoarsenRefine(t, fdt, cdt, acc, h.coarsen, h.refine), true
	}
	return false, false
}

// Runner is the type-erased face of a Tester, for callers that pick the
// vector type at run time.
type Runner interface {
	All(t, fdt, cdt float64) bool
	Run(check string, t, fdt, cdt float64) (pass, ok bool)
}

var _ Runner = (*Tester[struct{}])(nil)
