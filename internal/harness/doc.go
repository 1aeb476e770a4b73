// Package harness runs conformance scenarios: YAML files that pick a
// reference vector (optionally with injected faults), run one check or the
// whole aggregate, and assert on the verdict, the transcript and the
// recorded outcomes.
//
// # Scenario Format
//
//	name: grid_truncated_pack
//	description: "A lossy pack is caught by the buffer check"
//	app:
//	  kind: grid
//	  points: 9
//	  faults: [truncate-pack]
//	times: { t: 1.0, fdt: 0.5, cdt: 2.0 }
//	check: all
//	access: false
//	expect:
//	  pass: false
//	assertions:
//	  - type: transcript_contains
//	    text: "TestBuf 1 Failed"
//	  - type: check_outcome
//	    check: buf
//	    sample: 1
//	    pass: false
//	  - type: no_leaks
//
// # Assertion Types
//
//   - transcript_contains: the transcript contains text
//   - transcript_absent: the transcript does not contain text
//   - transcript_order: lines appear in the given order
//   - check_outcome: an outcome for check (and sample, if set) has the given pass/degenerate values
//   - outcome_count: check produced exactly count outcomes
//   - no_leaks: every vector was freed exactly once
//
// # Deterministic Testing
//
// Outcomes are stamped by a testutil.DeterministicClock, so the same
// scenario always yields the same sequence numbers. Golden snapshots hold
// the canonical JSON of the verdict and outcomes; transcripts are not part
// of the snapshot because the noisy-coarsen fault prints random values.
package harness
