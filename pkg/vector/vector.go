package vector

// App is the required capability set over a vector type V.
type App[V any] interface {
	// Init returns a new vector representing the solution at time t.
	Init(t float64) V

	// Clone returns a new vector with the same value as u.
	Clone(u V) V

	// Free releases u. It is called exactly once for every vector the
	// harness obtains from Init, Clone, BufUnpack, Coarsen or Refine.
	Free(u V)

	// Sum computes y := a*x + b*y in place.
	Sum(a float64, x V, b float64, y V)

	// SpatialNorm returns a scalar magnitude of u.
	SpatialNorm(u V) float64

	// BufSize returns the number of bytes BufPack needs.
	BufSize(bs *BufferStatus) int

	// BufPack serializes u into buf. bs.Size() holds len(buf).
	BufPack(u V, buf []byte, bs *BufferStatus) error

	// BufUnpack deserializes a new vector from buf.
	BufUnpack(buf []byte, bs *BufferStatus) (V, error)
}

// Accessor gives the user a look at a vector, typically to write it out.
type Accessor[V any] interface {
	Access(u V, as *AccessStatus)
}

// Coarsener maps a vector onto the next coarser spatial grid.
type Coarsener[V any] interface {
	Coarsen(fu V, cs *CoarsenRefStatus) V
}

// Refiner maps a vector onto the next finer spatial grid.
type Refiner[V any] interface {
	Refine(cu V, cs *CoarsenRefStatus) V
}

// AccessFunc adapts a function to the Accessor interface.
type AccessFunc[V any] func(u V, as *AccessStatus)

// Access calls f(u, as).
func (f AccessFunc[V]) Access(u V, as *AccessStatus) { f(u, as) }

// CoarsenFunc adapts a function to the Coarsener interface.
type CoarsenFunc[V any] func(fu V, cs *CoarsenRefStatus) V

// Coarsen calls f(fu, cs).
func (f CoarsenFunc[V]) Coarsen(fu V, cs *CoarsenRefStatus) V { return f(fu, cs) }

// RefineFunc adapts a function to the Refiner interface.
type RefineFunc[V any] func(cu V, cs *CoarsenRefStatus) V

// Refine calls f(cu, cs).
func (f RefineFunc[V]) Refine(cu V, cs *CoarsenRefStatus) V { return f(cu, cs) }

// AccessorOf returns app's Accessor, or nil if app has none.
func AccessorOf[V any](app App[V]) Accessor[V] {
	if a, ok := app.(Accessor[V]); ok {
		return a
	}
	return nil
}

// CoarsenerOf returns app's Coarsener, or nil if app has none.
func CoarsenerOf[V any](app App[V]) Coarsener[V] {
	if c, ok := app.(Coarsener[V]); ok {
		return c
	}
	return nil
}

// RefinerOf returns app's Refiner, or nil if app has none.
func RefinerOf[V any](app App[V]) Refiner[V] {
	if r, ok := app.(Refiner[V]); ok {
		return r
	}
	return nil
}
