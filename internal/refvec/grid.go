package refvec

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/ptcheck/pkg/vector"
)

const (
	gridHeaderBytes = 4
	gridValueBytes  = 8
)

// GridVec holds nodal values on a uniform grid over [0, 1].
type GridVec struct {
	Values []float64
	freed  bool
}

// Grid is a 1-D nodal vector with injection coarsening and linear
// refinement between grids of 2^k+1 and 2^(k-1)+1 points.
type Grid struct {
	tracker
	points int
	opts   Options
}

var (
	_ vector.App[*GridVec]       = (*Grid)(nil)
	_ vector.Accessor[*GridVec]  = (*Grid)(nil)
	_ vector.Coarsener[*GridVec] = (*Grid)(nil)
	_ vector.Refiner[*GridVec]   = (*Grid)(nil)
)

// NewGrid creates a Grid with the given number of fine points, which must
// be 2^k+1 with k >= 1.
func NewGrid(points int, opts Options) (*Grid, error) {
	if !validGridSize(points) {
		return nil, fmt.Errorf("grid points must be 2^k+1 with k >= 1, got %d", points)
	}
	return &Grid{points: points, opts: opts}, nil
}

func validGridSize(n int) bool {
	if n < 3 {
		return false
	}
	m := n - 1
	return m&(m-1) == 0
}

// Points returns the number of fine grid points.
func (g *Grid) Points() int { return g.points }

func (g *Grid) newVec(n int) *GridVec {
	g.alloc()
	return &GridVec{Values: make([]float64, n)}
}

// Init samples u(t,x) = (1+t)(2+cos(pi x)), or zero under FaultZeroInit.
func (g *Grid) Init(t float64) *GridVec {
	u := g.newVec(g.points)
	if g.opts.has(FaultZeroInit) {
		return u
	}
	h := 1.0 / float64(g.points-1)
	for i := range u.Values {
		x := float64(i) * h
		u.Values[i] = (1 + t) * (2 + math.Cos(math.Pi*x))
	}
	return u
}

// Clone copies u.
func (g *Grid) Clone(u *GridVec) *GridVec {
	v := g.newVec(len(u.Values))
	copy(v.Values, u.Values)
	return v
}

// Free releases u.
func (g *Grid) Free(u *GridVec) {
	if g.release(&u.freed) {
		u.Values = nil
	}
}

// Sum computes y = a*x + b*y. Both vectors must live on the same grid.
func (g *Grid) Sum(a float64, x *GridVec, b float64, y *GridVec) {
	if len(x.Values) != len(y.Values) {
		panic(fmt.Sprintf("refvec: sum of vectors on different grids (%d vs %d)", len(x.Values), len(y.Values)))
	}
	for i := range y.Values {
		y.Values[i] = a*x.Values[i] + b*y.Values[i]
	}
}

// SpatialNorm returns the discrete L2 norm sqrt(sum(u_i^2) / n).
func (g *Grid) SpatialNorm(u *GridVec) float64 {
	if len(u.Values) == 0 {
		return 0
	}
	var sum float64
	for _, x := range u.Values {
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(u.Values)))
}

// BufSize returns the encoded size of a fine grid vector.
func (g *Grid) BufSize(_ *vector.BufferStatus) int {
	return encodedGridSize(g.points)
}

func encodedGridSize(n int) int {
	return gridHeaderBytes + gridValueBytes*n
}

// BufPack writes a point count followed by the little-endian values.
func (g *Grid) BufPack(u *GridVec, buf []byte, bs *vector.BufferStatus) error {
	need := encodedGridSize(len(u.Values))
	if len(buf) < need || bs.Size() < need {
		return fmt.Errorf("buffer too small: have %d, need %d", min(len(buf), bs.Size()), need)
	}

	enc := make([]byte, need)
	binary.LittleEndian.PutUint32(enc, uint32(len(u.Values)))
	for i, x := range u.Values {
		off := gridHeaderBytes + i*gridValueBytes
		binary.LittleEndian.PutUint64(enc[off:], math.Float64bits(x))
	}

	if g.opts.has(FaultTruncatePack) {
		enc = enc[:need-1]
	}
	copy(buf, enc)
	bs.SetSize(need)
	return nil
}

// BufUnpack reads a vector written by BufPack.
func (g *Grid) BufUnpack(buf []byte, _ *vector.BufferStatus) (*GridVec, error) {
	if len(buf) < gridHeaderBytes {
		return nil, fmt.Errorf("buffer too short for header: %d bytes", len(buf))
	}
	n := int(binary.LittleEndian.Uint32(buf))
	if len(buf) < encodedGridSize(n) {
		return nil, fmt.Errorf("buffer too short: have %d, need %d", len(buf), encodedGridSize(n))
	}

	u := g.newVec(n)
	for i := range u.Values {
		off := gridHeaderBytes + i*gridValueBytes
		u.Values[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[off:]))
	}
	return u, nil
}

// Access writes u to the configured output on one line.
func (g *Grid) Access(u *GridVec, as *vector.AccessStatus) {
	var b strings.Builder
	fmt.Fprintf(&b, "grid t=%1.2e level=%d n=%d values=[", as.T, as.Level, len(u.Values))
	for i, x := range u.Values {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%1.6e", x)
	}
	b.WriteString("]\n")
	fmt.Fprint(g.opts.out(), b.String())
}

// Coarsen injects every other point onto the coarse grid.
func (g *Grid) Coarsen(fu *GridVec, _ *vector.CoarsenRefStatus) *GridVec {
	n := len(fu.Values)
	if !validGridSize(n) {
		panic(fmt.Sprintf("refvec: cannot coarsen grid of %d points", n))
	}
	cu := g.newVec((n + 1) / 2)
	for i := range cu.Values {
		cu.Values[i] = fu.Values[2*i]
		if g.opts.has(FaultNoisyCoarsen) {
			cu.Values[i] += noise()
		}
	}
	return cu
}

// Refine interpolates linearly onto the fine grid.
func (g *Grid) Refine(cu *GridVec, _ *vector.CoarsenRefStatus) *GridVec {
	n := len(cu.Values)
	fu := g.newVec(2*n - 1)
	for i, x := range cu.Values {
		fu.Values[2*i] = x
		if i+1 < n {
			fu.Values[2*i+1] = 0.5 * (x + cu.Values[i+1])
		}
	}
	if g.opts.has(FaultNoisyRefine) {
		for i := range fu.Values {
			fu.Values[i] += noise()
		}
	}
	return fu
}
