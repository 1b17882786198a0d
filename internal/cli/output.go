package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/pfrederiksen/vote-projector/internal/county"
	"github.com/pfrederiksen/vote-projector/internal/logger"
	"github.com/pfrederiksen/vote-projector/internal/projection"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteOutput writes the projection in the specified format
func WriteOutput(w io.Writer, sp *projection.StateProjection, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, sp)
	case FormatText:
		return writeText(w, sp)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the projection as JSON
func writeJSON(w io.Writer, sp *projection.StateProjection) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sp)
}

// writeText outputs one block per county followed by the statewide summary.
// Projected counts are truncated, not rounded.
func writeText(w io.Writer, sp *projection.StateProjection) error {
	nameA := sp.Candidates.DisplayName(county.SlotA)
	nameB := sp.Candidates.DisplayName(county.SlotB)

	for _, p := range sp.Counties {
		fmt.Fprintf(w, "County: %s\n", p.County.Name)
		fmt.Fprintf(w, " - %% In: %.2f%%\n", p.County.PercentReported*100)
		fmt.Fprintf(w, " - Current %s Votes: %d\n", nameA, p.County.CandidateAVotes)
		fmt.Fprintf(w, " - Current %s Votes: %d\n", nameB, p.County.CandidateBVotes)
		fmt.Fprintf(w, " - Projected %s Votes: %d\n", nameA, int64(p.ProjectedA))
		fmt.Fprintf(w, " - Projected %s Votes: %d\n\n", nameB, int64(p.ProjectedB))
	}

	if sp.State != "" {
		fmt.Fprintf(w, "State: %s\n", sp.State)
	}
	fmt.Fprintf(w, "Estimated Error Margin: %.2f%%\n", sp.ErrorMargin)
	fmt.Fprintf(w, "Projected Winner: %s\n", sp.WinnerName)
	fmt.Fprintf(w, "Total Projected %s Votes: %d (%.2f%%)\n", nameA, int64(sp.ProjectedATotal), sp.PercentA)
	_, err := fmt.Fprintf(w, "Total Projected %s Votes: %d (%.2f%%)\n", nameB, int64(sp.ProjectedBTotal), sp.PercentB)
	return err
}

// writeRunReport prints skipped counties and the run metrics
func writeRunReport(w io.Writer, sp *projection.StateProjection, metrics *logger.Metrics) {
	fmt.Fprintf(w, "\nCounties projected: %d, skipped: %d\n", len(sp.Counties), len(sp.Skipped))
	for _, s := range sp.Skipped {
		if s.Err != nil {
			fmt.Fprintf(w, "  SKIPPED: %s (%s: %v)\n", s.Name, s.Reason, s.Err)
		} else {
			fmt.Fprintf(w, "  SKIPPED: %s (%s)\n", s.Name, s.Reason)
		}
	}

	snapshot := metrics.GetSnapshot()

	counters := snapshot["counters"].(map[string]int64)
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %d\n", name, counters[name])
	}

	timings := snapshot["timings"].(map[string]map[string]interface{})
	if fetch, ok := timings["fetch.duration"]; ok {
		fmt.Fprintf(w, "  fetch.duration: %v\n", fetch["total"])
	}
}
