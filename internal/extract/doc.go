// Package extract walks a parsed election-results document and turns each
// county section into a county.Outcome.
//
// Sections are located with configurable CSS selectors. The county name comes
// from an attribute and defaults to "Unknown". Percent reported and total votes
// are required: a section missing either, or carrying text that does not parse,
// becomes a skip with a reason instead of a County. Candidate rows are matched
// against a two-slot candidate table; unparseable vote cells count as zero.
//
// Each section is processed in isolation. A panic while reading one section is
// recovered and reported as a skip, and the walk continues with the next one.
package extract
