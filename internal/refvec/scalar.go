package refvec

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/roach88/ptcheck/pkg/vector"
)

// scalarBytes is the encoded size of one float64.
const scalarBytes = 8

// ScalarVec is a vector holding one real number.
type ScalarVec struct {
	Value float64
	freed bool
}

// Scalar is the minimal reference vector.
type Scalar struct {
	tracker
	opts Options
}

var (
	_ vector.App[*ScalarVec]       = (*Scalar)(nil)
	_ vector.Accessor[*ScalarVec]  = (*Scalar)(nil)
	_ vector.Coarsener[*ScalarVec] = (*Scalar)(nil)
	_ vector.Refiner[*ScalarVec]   = (*Scalar)(nil)
)

// NewScalar creates a Scalar.
func NewScalar(opts Options) *Scalar {
	return &Scalar{opts: opts}
}

func (s *Scalar) newVec(x float64) *ScalarVec {
	s.alloc()
	return &ScalarVec{Value: x}
}

// Init returns t, or 0 under FaultZeroInit.
func (s *Scalar) Init(t float64) *ScalarVec {
	if s.opts.has(FaultZeroInit) {
		return s.newVec(0)
	}
	return s.newVec(t)
}

// Clone copies u.
func (s *Scalar) Clone(u *ScalarVec) *ScalarVec {
	return s.newVec(u.Value)
}

// Free releases u.
func (s *Scalar) Free(u *ScalarVec) {
	s.release(&u.freed)
}

// Sum computes y = a*x + b*y.
func (s *Scalar) Sum(a float64, x *ScalarVec, b float64, y *ScalarVec) {
	y.Value = a*x.Value + b*y.Value
}

// SpatialNorm returns |u|.
func (s *Scalar) SpatialNorm(u *ScalarVec) float64 {
	return math.Abs(u.Value)
}

// BufSize returns the size of one float64.
func (s *Scalar) BufSize(_ *vector.BufferStatus) int {
	return scalarBytes
}

// BufPack writes the raw little-endian bits of u.
func (s *Scalar) BufPack(u *ScalarVec, buf []byte, bs *vector.BufferStatus) error {
	if len(buf) < scalarBytes || bs.Size() < scalarBytes {
		return fmt.Errorf("buffer too small: have %d, need %d", len(buf), scalarBytes)
	}
	var enc [scalarBytes]byte
	binary.LittleEndian.PutUint64(enc[:], math.Float64bits(u.Value))

	n := scalarBytes
	if s.opts.has(FaultTruncatePack) {
		n--
	}
	copy(buf, enc[:n])
	bs.SetSize(scalarBytes)
	return nil
}

// BufUnpack reads a vector written by BufPack.
func (s *Scalar) BufUnpack(buf []byte, _ *vector.BufferStatus) (*ScalarVec, error) {
	if len(buf) < scalarBytes {
		return nil, fmt.Errorf("buffer too short: have %d, need %d", len(buf), scalarBytes)
	}
	return s.newVec(math.Float64frombits(binary.LittleEndian.Uint64(buf))), nil
}

// Access writes u to the configured output.
func (s *Scalar) Access(u *ScalarVec, as *vector.AccessStatus) {
	fmt.Fprintf(s.opts.out(), "scalar t=%1.2e level=%d value=%1.6e\n", as.T, as.Level, u.Value)
}

// Coarsen copies u; a scalar has no spatial grid.
func (s *Scalar) Coarsen(fu *ScalarVec, _ *vector.CoarsenRefStatus) *ScalarVec {
	if s.opts.has(FaultNoisyCoarsen) {
		return s.newVec(fu.Value + noise())
	}
	return s.newVec(fu.Value)
}

// Refine copies u.
func (s *Scalar) Refine(cu *ScalarVec, _ *vector.CoarsenRefStatus) *ScalarVec {
	if s.opts.has(FaultNoisyRefine) {
		return s.newVec(cu.Value + noise())
	}
	return s.newVec(cu.Value)
}

// noise returns a small random perturbation, never zero.
func noise() float64 {
	return (1 + rand.Float64()) * 1e-9
}
