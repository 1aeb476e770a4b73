// Package canonical serializes run records to canonical JSON and derives
// content-addressed digests from them.
//
// The encoding follows RFC 8785: object keys sorted by UTF-16 code units,
// no HTML escaping, NFC-normalized strings. Floats are never encoded as
// JSON numbers; callers format them with Float, which round-trips exactly.
package canonical
