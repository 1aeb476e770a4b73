package conform

import (
	"github.com/roach88/ptcheck/pkg/vector"
)

// InitAccess constructs a vector at time t, shows it through acc when acc
// is not nil, and frees it. It has no automatic verdict and returns true.
func (h *Tester[V]) InitAccess(t float64, acc vector.Accessor[V]) bool {
	const check = CheckInitAccess
	s := h.newScope(check)
	defer s.freeAll()

	h.rep.Printf("\nStarting %s\n\n", Title(check))

	h.say(check, "Starting Test 1\n")
	h.say(check, "u = init(t=%1.2e)\n", t)
	u := s.set("u", h.app.Init(t))

	if acc != nil {
		h.say(check, "access(u)\n")
		acc.Access(u, vector.NewTestAccessStatus(t, 0))
		h.say(check, "check output: wrote u for initial condition at t=%1.2e.\n\n", t)
	}

	s.freeAll()
	h.rep.Printf("Finished %s\n", Title(check))

	h.finish(check, t, true, false, false)
	return true
}

// Clone constructs u, clones it to v, shows both through acc when acc is
// not nil, and frees both. It has no automatic verdict and returns true.
func (h *Tester[V]) Clone(t float64, acc vector.Accessor[V]) bool {
	const check = CheckClone
	s := h.newScope(check)
	defer s.freeAll()

	h.rep.Printf("\nStarting %s\n\n", Title(check))

	h.say(check, "Starting Test 1\n")
	h.say(check, "u = init(t=%1.2e)\n", t)
	u := s.set("u", h.app.Init(t))

	h.say(check, "v = clone(u)\n")
	v := s.set("v", h.app.Clone(u))

	if acc != nil {
		as := vector.NewTestAccessStatus(t, 0)
		h.say(check, "access(u)\n")
		acc.Access(u, as)

		h.say(check, "access(v)\n")
		acc.Access(v, as)

		h.say(check, "check output:  wrote u and v for initial condition at t=%1.2e.\n\n", t)
	}

	s.freeAll()
	h.rep.Printf("Finished %s\n", Title(check))

	h.finish(check, t, true, false, false)
	return true
}

// Sum exercises the affine combination. It computes v = u - v, which should
// be zero, and then v = 2u + v, which should equal 2u. The results are only
// shown through acc for a human to read; Sum always returns true.
func (h *Tester[V]) Sum(t float64, acc vector.Accessor[V]) bool {
	const check = CheckSum
	s := h.newScope(check)
	defer s.freeAll()

	as := vector.NewTestAccessStatus(t, 0)

	h.rep.Printf("\nStarting %s\n\n", Title(check))

	h.say(check, "Starting Test 1\n")
	h.say(check, "u = init(t=%1.2e)\n", t)
	u := s.set("u", h.app.Init(t))

	h.say(check, "v = clone(u)\n")
	v := s.set("v", h.app.Clone(u))

	h.say(check, "v = u - v\n")
	h.app.Sum(1.0, u, -1.0, v)

	if acc != nil {
		h.say(check, "access(v)\n")
		acc.Access(v, as)
		h.say(check, "check output:  v should equal the zero vector\n\n")
	}

	h.say(check, "Starting Test 2\n")
	h.say(check, "v = 2*u + v\n")
	h.app.Sum(2.0, u, 1.0, v)

	if acc != nil {
		h.say(check, "access(v)\n")
		acc.Access(v, as)

		h.say(check, "access(u)\n")
		acc.Access(u, as)
	}
	h.say(check, "check output:  v should equal 2*u \n\n")

	s.freeAll()
	h.rep.Printf("Finished %s\n", Title(check))

	h.finish(check, t, true, false, false)
	return true
}

// SpatialNorm checks that the norm and the affine combination behave like a
// vector space:
//
//	norm(u - u)            = 0    within Tolerance
//	norm(u + u) / norm(u)  = 2    within Tolerance
//	norm(0.5 u) / norm(u)  = 0.5  within Tolerance
//
// A NaN anywhere fails. A zero norm(u) is reported as a warning; the ratio
// tests then fail and their failure lines name the likely cause.
func (h *Tester[V]) SpatialNorm(t float64) bool {
	const check = CheckSpatialNorm
	s := h.newScope(check)
	defer s.freeAll()

	correct := true

	h.rep.Printf("\nStarting %s\n\n", Title(check))

	// Test 1
	h.say(check, "Starting Test 1\n")
	h.say(check, "u = init(t=%1.2e)\n", t)
	u := s.set("u", h.app.Init(t))

	h.say(check, "spatialnorm(u) \n")
	zero, nan := h.warnNorm(check, h.app.SpatialNorm(u))
	if nan {
		correct = false
	}

	h.say(check, "v = clone(u)\n")
	v := s.set("v", h.app.Clone(u))

	h.say(check, "v = u - v \n")
	h.app.Sum(1.0, u, -1.0, v)

	h.say(check, "spatialnorm(v) \n")
	result1 := h.app.SpatialNorm(v)
	if withinTolerance(result1, 0.0) {
		h.say(check, "Test 1 Passed\n")
	} else {
		correct = false
		h.say(check, "Test 1 Failed\n")
	}
	h.say(check, "actual output:    spatialnorm(v) = %1.2e  \n", result1)
	h.say(check, "expected output:  spatialnorm(v) = 0.0 \n\n")

	// Test 2
	h.say(check, "Starting Test 2\n")
	h.say(check, "w = clone(u)\n")
	w := s.set("w", h.app.Clone(u))

	h.say(check, "w = u + w \n")
	h.app.Sum(1.0, u, 1.0, w)

	if !h.ratioTest(check, 2, u, w, 2.0, zero) {
		correct = false
	}
	h.say(check, "expected output:  spatialnorm(w) / spatialnorm(u) = 2.0 \n\n")

	// Test 3
	h.say(check, "Starting Test 3\n")
	s.free("w")

	h.say(check, "w = clone(u)\n")
	w = s.set("w", h.app.Clone(u))

	h.say(check, "w = 0.0*u + 0.5*w \n")
	h.app.Sum(0.0, u, 0.5, w)

	if !h.ratioTest(check, 3, u, w, 0.5, zero) {
		correct = false
	}
	h.say(check, "expected output:  spatialnorm(w) / spatialnorm(u) = 0.5 \n\n")

	s.freeAll()

	switch {
	case correct:
		h.rep.Printf("Finished %s: all tests passed successfully\n", Title(check))
	case zero:
		h.rep.Printf("Finished %s: some tests failed, possibly due to u = 0\n", Title(check))
	default:
		h.rep.Printf("Finished %s: some tests failed\n", Title(check))
	}

	h.finish(check, t, correct, zero, true)
	return correct
}

// ratioTest narrates and evaluates norm(w)/norm(u) against want.
func (h *Tester[V]) ratioTest(check string, n int, u, w V, want float64, zero bool) bool {
	h.say(check, "spatialnorm(u)\n")
	result1 := h.app.SpatialNorm(u)

	h.say(check, "spatialnorm(w)\n")
	result2 := h.app.SpatialNorm(w)

	ratio := result2 / result1
	ok := withinTolerance(ratio, want)
	switch {
	case ok:
		h.say(check, "Test %d Passed\n", n)
	case zero:
		h.say(check, "Test %d Failed, Likely due to u = 0\n", n)
	default:
		h.say(check, "Test %d Failed\n", n)
	}
	h.say(check, "actual output:    spatialnorm(w) / spatialnorm(u) = %1.2e / %1.2e = %1.2e \n",
		result2, result1, ratio)
	return ok
}

// Buf checks that a vector survives BufPack followed by BufUnpack:
// norm(u - unpack(pack(u))) must be within Tolerance. The buffer is
// allocated with exactly BufSize bytes and that size is recorded in the
// status before packing. A NaN norm(u) also fails the check; a zero norm(u)
// is only a warning.
func (h *Tester[V]) Buf(t float64) bool {
	const check = CheckBuf
	s := h.newScope(check)
	defer s.freeAll()

	correct := true

	h.rep.Printf("\nStarting %s\n\n", Title(check))

	h.say(check, "Starting Test 1\n")
	h.say(check, "u = init(t=%1.2e)\n", t)
	u := s.set("u", h.app.Init(t))

	h.say(check, "spatialnorm(u) \n")
	zero, nan := h.warnNorm(check, h.app.SpatialNorm(u))
	if nan {
		correct = false
	}

	bs := vector.NewBufferStatus(0)

	h.say(check, "size = bufsize()\n")
	size := h.app.BufSize(bs)
	if size < 0 {
		h.say(check, "bufsize returned negative size %d\n", size)
		h.say(check, "Test 1 Failed\n\n")
		correct = false
	} else if !h.roundTrip(s, u, size, bs) {
		correct = false
	}

	s.freeAll()

	if correct {
		h.rep.Printf("Finished %s: all tests passed successfully\n", Title(check))
	} else {
		h.rep.Printf("Finished %s: some tests failed\n", Title(check))
	}

	h.finish(check, t, correct, zero, true)
	return correct
}

// roundTrip packs u into a fresh buffer, unpacks it as v and compares.
func (h *Tester[V]) roundTrip(s *scope[V], u V, size int, bs *vector.BufferStatus) bool {
	const check = CheckBuf

	h.say(check, "buffer = alloc(%d)\n", size)
	buffer := make([]byte, size)

	h.say(check, "buffer = bufpack(u, buffer))\n")
	bs.SetSize(size)
	if err := h.app.BufPack(u, buffer, bs); err != nil {
		h.say(check, "bufpack error: %v\n", err)
		h.say(check, "Test 1 Failed\n\n")
		return false
	}

	h.say(check, "v = bufunpack(buffer)\n")
	v, err := h.app.BufUnpack(buffer, bs)
	if err != nil {
		h.say(check, "bufunpack error: %v\n", err)
		h.say(check, "Test 1 Failed\n\n")
		return false
	}
	s.set("v", v)

	h.say(check, "v = u - v \n")
	h.app.Sum(1.0, u, -1.0, v)

	h.say(check, "spatialnorm(v) \n")
	result1 := h.app.SpatialNorm(v)
	ok := withinTolerance(result1, 0.0)
	if ok {
		h.say(check, "Test 1 Passed\n")
	} else {
		h.say(check, "Test 1 Failed\n")
	}
	h.say(check, "actual output:    spatialnorm(v) = %1.2e  \n", result1)
	h.say(check, "expected output:  spatialnorm(v) = 0.0 \n\n")
	return ok
}

// CoarsenRefine checks that spatial coarsening and refinement are exactly
// repeatable. Two clones of the same vector are coarsened independently and
// must agree exactly (Test 2), and refining both coarse results must agree
// exactly (Test 3). Test 1 and Test 4 are informational: Test 4 reports
// norm(refine(coarsen(u)) - u), which is only zero for simple transfer
// operators on functions they represent exactly.
//
// When either operator is nil there is nothing to check and CoarsenRefine
// returns true.
func (h *Tester[V]) CoarsenRefine(t, fdt, cdt float64, acc vector.Accessor[V], coarsen vector.Coarsener[V], refine vector.Refiner[V]) bool {
	const check = CheckCoarsenRefine

	h.rep.Printf("\nStarting %s\n\n", Title(check))
	if coarsen == nil || refine == nil {
		h.say(check, "coarsen or refine not supplied, nothing to check\n")
		h.rep.Printf("Finished %s: skipped\n", Title(check))
		return true
	}

	s := h.newScope(check)
	defer s.freeAll()

	cs := vector.NewCoarsenRefStatus(t, fdt, cdt)
	correct := true

	// Test 1
	h.say(check, "Starting Test 1\n")
	h.say(check, "u = init(t=%1.2e)\n", t)
	u := s.set("u", h.app.Init(t))

	h.say(check, "spatialnorm(u) \n")
	zero, _ := h.warnNorm(check, h.app.SpatialNorm(u))

	h.say(check, "uc = coarsen(u)\n")
	uc := s.set("uc", coarsen.Coarsen(u, cs))

	if acc != nil {
		h.say(check, "access(uc) \n")
		acc.Access(uc, vector.NewTestAccessStatus(t, 1))

		h.say(check, "access(u) \n")
		acc.Access(u, vector.NewTestAccessStatus(t, 0))
	}
	h.say(check, "actual output:   wrote u and spatially coarsened u \n\n")

	// Test 2
	h.say(check, "Starting Test 2\n")
	h.say(check, "v = clone(u)\n")
	v := s.set("v", h.app.Clone(u))

	h.say(check, "vc = coarsen(v)\n")
	vc := s.set("vc", coarsen.Coarsen(v, cs))

	h.say(check, "wc = clone(vc)\n")
	wc := s.set("wc", h.app.Clone(vc))

	h.say(check, "wc = uc - wc \n")
	h.app.Sum(1.0, uc, -1.0, wc)

	h.say(check, "spatialnorm(wc)\n")
	result1 := h.app.SpatialNorm(wc)
	if exactlyZero(result1) {
		h.say(check, "Test 2 Passed\n")
	} else {
		correct = false
		h.say(check, "Test 2 Failed\n")
	}
	h.say(check, "actual output:    spatialnorm(wc) = %1.2e \n", result1)
	h.say(check, "expected output:  spatialnorm(wc) = 0.0 \n\n")

	// Test 3
	h.say(check, "Starting Test 3\n")
	h.say(check, "w = clone(u)\n")
	w := s.set("w", h.app.Clone(u))

	s.free("u")
	s.free("v")

	h.say(check, "v = refine(vc)\n")
	v = s.set("v", refine.Refine(vc, cs))

	h.say(check, "u = refine(uc)\n")
	u = s.set("u", refine.Refine(uc, cs))

	h.say(check, "v = u - v \n")
	h.app.Sum(1.0, u, -1.0, v)

	h.say(check, "spatialnorm(v)\n")
	result1 = h.app.SpatialNorm(v)
	if exactlyZero(result1) {
		h.say(check, "Test 3 Passed\n")
	} else {
		correct = false
		h.say(check, "Test 3 Failed\n")
	}
	h.say(check, "actual output:    spatialnorm(v) = %1.2e \n", result1)
	h.say(check, "expected output:  spatialnorm(v) = 0.0 \n\n")

	// Test 4
	h.say(check, "Starting Test 4\n")
	h.say(check, "w = u - w \n")
	h.app.Sum(1.0, u, -1.0, w)

	h.say(check, "spatialnorm(w)\n")
	result1 = h.app.SpatialNorm(w)
	h.say(check, "actual output:    spatialnorm(w) = %1.2e \n", result1)
	h.say(check, "expected output:  For simple interpolation formulas\n")
	h.rep.Printf("                             (e.g., bilinear) and a known function\n")
	h.rep.Printf("                             (e.g., constant), spatialnorm(w) should = 0\n\n")

	s.freeAll()

	if correct {
		h.rep.Printf("Finished %s: all tests passed successfully\n", Title(check))
	} else {
		h.rep.Printf("Finished %s: some tests failed\n", Title(check))
	}

	h.finish(check, t, correct, zero, true)
	return correct
}
