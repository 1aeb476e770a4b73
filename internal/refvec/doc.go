// Package refvec provides reference implementations of vector.App used by
// the CLI, the scenario harness and the tests.
//
//   - Scalar: a single real number. Init(t) = t, the norm is |x|.
//   - Grid:   values of u(t,x) = (1+t)(2+cos(pi x)) on a uniform 1-D grid of
//     2^k+1 points, with injection coarsening and linear refinement.
//
// Both can be told to misbehave (see Fault) so the checks have something to
// catch. Both count live vectors and double frees.
package refvec
