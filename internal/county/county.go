package county

import "fmt"

// UnknownName is used when a county section carries no identifying attribute
const UnknownName = "Unknown"

// Skip reasons
const (
	ReasonMissingPercent = "missing percent-in element"
	ReasonMissingTotal   = "missing total votes element"
	ReasonInvalidPercent = "invalid percent-in value"
	ReasonInvalidTotal   = "invalid total votes value"
	ReasonUnexpected     = "unexpected error"
)

// County represents the reporting data of one county section
type County struct {
	Name            string  `json:"name"`
	PercentReported float64 `json:"percent_reported"` // fraction in [0,1]
	TotalVotes      int     `json:"total_votes"`
	CandidateAVotes int     `json:"candidate_a_votes"`
	CandidateBVotes int     `json:"candidate_b_votes"`
}

// Votes returns the current vote count for the given slot
func (c County) Votes(slot Slot) int {
	if slot == SlotA {
		return c.CandidateAVotes
	}
	return c.CandidateBVotes
}

// Skip records a county section that could not be turned into a County
type Skip struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Error implements error so a skip can be logged or wrapped directly
func (s Skip) Error() string {
	if s.Err != nil {
		return fmt.Sprintf("county %s: %s: %v", s.Name, s.Reason, s.Err)
	}
	return fmt.Sprintf("county %s: %s", s.Name, s.Reason)
}

// Unwrap returns the underlying cause, if any
func (s Skip) Unwrap() error {
	return s.Err
}

// Outcome is the result of extracting one county section.
// Exactly one of County and Skip is set.
type Outcome struct {
	County *County
	Skip   *Skip
}

// Valid wraps a parsed county
func Valid(c County) Outcome {
	return Outcome{County: &c}
}

// Skipped wraps a skip for the named county
func Skipped(name, reason string, err error) Outcome {
	return Outcome{Skip: &Skip{Name: name, Reason: reason, Err: err}}
}

// OK reports whether the outcome holds a valid county
func (o Outcome) OK() bool {
	return o.County != nil
}

// Partition splits outcomes into valid counties and skips, preserving order
func Partition(outcomes []Outcome) ([]County, []Skip) {
	counties := make([]County, 0, len(outcomes))
	skips := make([]Skip, 0)
	for _, o := range outcomes {
		switch {
		case o.County != nil:
			counties = append(counties, *o.County)
		case o.Skip != nil:
			skips = append(skips, *o.Skip)
		}
	}
	return counties, skips
}
