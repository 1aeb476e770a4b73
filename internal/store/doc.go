// Package store keeps a SQLite history of conformance runs.
//
// Each run row records the parameters, the aggregate verdict and a digest
// of its outcomes (see internal/canonical). Outcome rows hold one check
// invocation each.
//
// All ordering uses seq, a logical counter, never timestamps. Queries
// order by seq so that listings are identical across machines.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package store
