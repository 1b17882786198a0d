// Package cli implements the command-line interface for vote-projector.
//
// The cli package provides the Cobra-based root command. It merges the optional TOML
// config with flags, builds the run's logger, fetches or loads the results page,
// runs extraction and projection, and prints the per-county and statewide report as
// text or JSON. The summary can optionally be published through a notifier.
package cli
