// Package conform checks a vector.App against the algebraic and
// serialization contracts a parallel-in-time solver relies on.
//
// # Checks
//
// Three checks are smoke checks with no automatic verdict. They exist to
// surface crashes and to let a human read the Access output:
//
//   - InitAccess: init, access, free
//   - Clone: init, clone, access both, free both
//   - Sum: v = u - v should print as zero, v = 2u + v should print as 2u
//
// Three checks compute a verdict:
//
//   - SpatialNorm: u - u = 0, u + u = 2u, 0u + 0.5u = 0.5u, to within Tolerance
//   - Buf: unpack(pack(u)) equals u to within Tolerance
//   - CoarsenRefine: coarsen and refine are exactly repeatable
//
// All runs every check at two times and ANDs the verdicts together. It
// never stops early; a failing check only flips the aggregate result.
//
// # Resources
//
// Every vector a check obtains is freed exactly once before the check
// returns, on every path, including a panic inside a capability call.
//
// # Output
//
// Narration goes to a report.Reporter so that only the primary process of
// a distributed run writes. Structured events go to an optional slog.Logger
// and every check result is handed to an optional Observer.
//
// A Tester is not safe for concurrent use.
package conform
