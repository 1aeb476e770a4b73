package refvec

import (
	"fmt"

	"github.com/roach88/ptcheck/pkg/conform"
	"github.com/roach88/ptcheck/pkg/report"
)

// Kinds of reference vector.
const (
	KindScalar = "scalar"
	KindGrid   = "grid"
)

// DefaultGridPoints is the fine grid size used when none is given.
const DefaultGridPoints = 17

// Build creates the reference vector of the given kind and a conformance
// runner over it.
func Build(kind string, points int, opts Options, rep *report.Reporter, copts ...conform.Option) (conform.Runner, Tracked, error) {
	switch kind {
	case KindScalar:
		app := NewScalar(opts)
		return conform.New[*ScalarVec](app, rep, copts...), app, nil
	case KindGrid:
		if points == 0 {
			points = DefaultGridPoints
		}
		app, err := NewGrid(points, opts)
		if err != nil {
			return nil, nil, err
		}
		return conform.New[*GridVec](app, rep, copts...), app, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector kind %q (want %s or %s)", kind, KindScalar, KindGrid)
	}
}

// PointsOf returns the finest-level size of a built grid vector, or 0 for
// a scalar.
func PointsOf(tr Tracked) int {
	if g, ok := tr.(*Grid); ok {
		return g.Points()
	}
	return 0
}
