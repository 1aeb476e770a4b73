package conform

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/ptcheck/pkg/report"
	"github.com/roach88/ptcheck/pkg/vector"
)

// cell is a trivial vector used to exercise scope bookkeeping.
type cell struct{ x float64 }

type cellApp struct {
	freed []float64
}

func (a *cellApp) Init(t float64) *cell                { return &cell{t} }
func (a *cellApp) Clone(u *cell) *cell                 { return &cell{u.x} }
func (a *cellApp) Free(u *cell)                        { a.freed = append(a.freed, u.x) }
func (a *cellApp) Sum(x float64, u *cell, y float64, v *cell) { v.x = x*u.x + y*v.x }
func (a *cellApp) SpatialNorm(u *cell) float64         { return u.x }
func (a *cellApp) BufSize(*vector.BufferStatus) int    { return 0 }
func (a *cellApp) BufPack(*cell, []byte, *vector.BufferStatus) error { return nil }
func (a *cellApp) BufUnpack([]byte, *vector.BufferStatus) (*cell, error) {
	return &cell{}, nil
}

func TestScope_ReleaseOrderIsStable(t *testing.T) {
	app := &cellApp{}
	var buf bytes.Buffer
	h := New[*cell](app, report.New(&buf, nil))
	s := h.newScope(CheckSpatialNorm)

	s.set("u", &cell{1})
	s.set("v", &cell{2})
	s.set("w", &cell{3})
	s.free("u")
	s.set("u", &cell{4})
	s.freeAll()

	assert.Equal(t, []float64{1, 4, 2, 3}, app.freed)
	assert.Equal(t,
		"   TestSpatialNorm:   free(u)\n"+
			"   TestSpatialNorm:   free(u)\n"+
			"   TestSpatialNorm:   free(v)\n"+
			"   TestSpatialNorm:   free(w)\n",
		buf.String())
}

func TestScope_FreeAllTwiceIsSafe(t *testing.T) {
	app := &cellApp{}
	h := New[*cell](app, nil)
	s := h.newScope(CheckBuf)

	s.set("u", &cell{1})
	s.freeAll()
	s.freeAll()
	s.free("u")

	assert.Equal(t, []float64{1}, app.freed)
}

func TestScope_SetOverLiveVectorPanics(t *testing.T) {
	h := New[*cell](&cellApp{}, nil)
	s := h.newScope(CheckBuf)

	s.set("u", &cell{1})
	assert.Panics(t, func() { s.set("u", &cell{2}) })
}

func TestTolerancePredicates(t *testing.T) {
	assert.True(t, withinTolerance(2.0, 2.0))
	assert.True(t, withinTolerance(2.0+5e-13, 2.0))
	assert.False(t, withinTolerance(2.0+5e-12, 2.0))
	assert.False(t, withinTolerance(math.NaN(), 2.0))

	assert.True(t, exactlyZero(0.0))
	assert.False(t, exactlyZero(1e-300))
	assert.False(t, exactlyZero(math.NaN()))
}
