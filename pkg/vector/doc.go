// Package vector defines the capability set a parallel-in-time solver author
// supplies so the conformance checks in package conform can exercise it.
//
// A vector is opaque. The checks never look inside one; every construction,
// combination, measurement and release goes through an App.
//
// # Required operations
//
// App bundles the operations every implementation must provide:
//
//   - Init:      construct a vector for time t
//   - Clone:     deep copy
//   - Free:      release (called exactly once per vector)
//   - Sum:       y := a*x + b*y
//   - SpatialNorm
//   - BufSize / BufPack / BufUnpack
//
// # Optional operations
//
// Accessor, Coarsener and Refiner are optional. An App may implement them
// directly, or callers may hand them to conform.New as separate operations
// (conform.WithAccessor, conform.WithCoarsenRefine), wrapping plain
// functions with AccessFunc, CoarsenFunc and RefineFunc. AccessorOf,
// CoarsenerOf and RefinerOf look up an App's own methods.
//
// # Status contexts
//
// Each operation kind receives its own status type: AccessStatus,
// BufferStatus and CoarsenRefStatus. They are short lived and owned by the
// caller that built them.
package vector
