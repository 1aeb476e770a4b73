package conform

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/roach88/ptcheck/pkg/report"
	"github.com/roach88/ptcheck/pkg/vector"
)

// Tolerance is the absolute tolerance for the norm based checks.
const Tolerance = 1e-12

// Check names used in outcomes, scenarios and the run store.
const (
	CheckInitAccess    = "init_access"
	CheckClone         = "clone"
	CheckSum           = "sum"
	CheckSpatialNorm   = "spatial_norm"
	CheckBuf           = "buf"
	CheckCoarsenRefine = "coarsen_refine"
)

// CheckNames lists every check in driver order.
var CheckNames = []string{
	CheckInitAccess,
	CheckClone,
	CheckSum,
	CheckSpatialNorm,
	CheckBuf,
	CheckCoarsenRefine,
}

// titles maps check names to the label used in the transcript.
var titles = map[string]string{
	CheckInitAccess:    "TestInitAccess",
	CheckClone:         "TestClone",
	CheckSum:           "TestSum",
	CheckSpatialNorm:   "TestSpatialNorm",
	CheckBuf:           "TestBuf",
	CheckCoarsenRefine: "TestCoarsenRefine",
}

// Title returns the transcript label for a check name.
func Title(check string) string {
	return titles[check]
}

// Tester runs the conformance checks against one App.
type Tester[V any] struct {
	app    vector.App[V]
	rep    *report.Reporter
	logger *slog.Logger
	obs    Observer

	// Optional operations, from options or else from the App itself.
	acc     vector.Accessor[V]
	coarsen vector.Coarsener[V]
	refine  vector.Refiner[V]

	// sample is the driver's 1-based sample index, 0 for direct calls.
	sample int
}

type settings struct {
	logger *slog.Logger
	obs    Observer

	// Held as any because Option is not generic; New asserts them to V.
	accessor any
	coarsen  any
	refine   any
}

// Option configures a Tester.
type Option func(*settings)

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithObserver sets the receiver of check outcomes.
func WithObserver(o Observer) Option {
	return func(s *settings) { s.obs = o }
}

// WithAccessor supplies the Access operation for an App that does not
// implement vector.Accessor, or replaces the App's own. The vector type
// must match the App's.
func WithAccessor[V any](a vector.Accessor[V]) Option {
	return func(s *settings) {
		if a != nil {
			s.accessor = a
		}
	}
}

// WithCoarsenRefine supplies the spatial transfer operators. Either may be
// nil, in which case the App's own method is used if it has one. All and
// Run skip the coarsen/refine check unless both end up present.
func WithCoarsenRefine[V any](c vector.Coarsener[V], r vector.Refiner[V]) Option {
	return func(s *settings) {
		if c != nil {
			s.coarsen = c
		}
		if r != nil {
			s.refine = r
		}
	}
}

// New creates a Tester for app narrating to rep. A nil rep discards output.
// It panics if an optional operation was supplied for a different vector
// type than V.
func New[V any](app vector.App[V], rep *report.Reporter, opts ...Option) *Tester[V] {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if rep == nil {
		rep = report.Discard()
	}
	return &Tester[V]{
		app:     app,
		rep:     rep,
		logger:  s.logger,
		obs:     s.obs,
		acc:     slotOr(s.accessor, "WithAccessor", vector.AccessorOf(app)),
		coarsen: slotOr(s.coarsen, "WithCoarsenRefine", vector.CoarsenerOf(app)),
		refine:  slotOr(s.refine, "WithCoarsenRefine", vector.RefinerOf(app)),
	}
}

// slotOr returns the supplied operation asserted to T, or fallback when
// nothing was supplied.
func slotOr[T any](supplied any, option string, fallback T) T {
	if supplied == nil {
		return fallback
	}
	op, ok := supplied.(T)
	if !ok {
		panic(fmt.Sprintf("conform: %s operation %T does not match the App's vector type", option, supplied))
	}
	return op
}

// say writes one indented narration line for the named check.
func (h *Tester[V]) say(check, format string, args ...any) {
	h.rep.Printf("   "+Title(check)+":   "+format, args...)
}

// finish records and logs the result of one check invocation.
func (h *Tester[V]) finish(check string, t float64, pass, degenerate, automatic bool) {
	h.logger.Debug("check finished",
		"check", check,
		"t", t,
		"sample", h.sample,
		"pass", pass,
		"degenerate", degenerate,
	)
	if h.obs != nil {
		h.obs.Observe(Outcome{
			Check:      check,
			Sample:     h.sample,
			T:          t,
			Pass:       pass,
			Degenerate: degenerate,
			Automatic:  automatic,
		})
	}
}

// warnNorm narrates the zero and NaN warnings for norm(u).
// It returns whether the norm is exactly zero and whether it is NaN.
func (h *Tester[V]) warnNorm(check string, norm float64) (zero, nan bool) {
	if math.Abs(norm) == 0.0 {
		h.say(check, "Warning:  spatialnorm(u) = 0.0\n")
		return true, false
	}
	if math.IsNaN(norm) {
		h.say(check, "Warning:  spatialnorm(u) = nan\n")
		return false, true
	}
	return false, false
}

// withinTolerance reports whether |x - want| <= Tolerance and x is a number.
func withinTolerance(x, want float64) bool {
	return !(math.Abs(x-want) > Tolerance || math.IsNaN(x))
}

// exactlyZero reports whether x is exactly zero.
func exactlyZero(x float64) bool {
	return !(math.Abs(x) != 0.0 || math.IsNaN(x))
}
