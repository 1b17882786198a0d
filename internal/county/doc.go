// Package county provides the per-county record produced by extraction and the
// helpers shared by the extractor and the projection code.
//
// A County is only ever built when both the percent-reported and total-votes
// fields parsed. Counties that could not be built are represented by a Skip,
// and both cases travel together as an Outcome so callers can partition
// successes from skips without relying on panics or sentinel values.
package county
