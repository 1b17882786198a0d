package county

import (
	"errors"
	"fmt"
	"strings"
)

// Slot identifies one of the two tracked candidates
type Slot int

const (
	SlotA Slot = iota
	SlotB
)

// String returns "A" or "B"
func (s Slot) String() string {
	if s == SlotA {
		return "A"
	}
	return "B"
}

// MarshalText encodes the slot as "A" or "B"
func (s Slot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Candidate describes how a tracked candidate is displayed and recognized
type Candidate struct {
	Name    string `json:"name" toml:"name"`
	Pattern string `json:"pattern" toml:"pattern"` // case-sensitive substring of the displayed name
}

// CandidateTable maps the two tracked slots to candidates
type CandidateTable struct {
	A Candidate `json:"a" toml:"a"`
	B Candidate `json:"b" toml:"b"`
}

// DefaultCandidates returns the table used when nothing is configured
func DefaultCandidates() CandidateTable {
	return CandidateTable{
		A: Candidate{Name: "Trump", Pattern: "Trump"},
		B: Candidate{Name: "Harris", Pattern: "Harris"},
	}
}

// NewCandidateTable builds a table from two name patterns, using the pattern as display name
func NewCandidateTable(patternA, patternB string) CandidateTable {
	return CandidateTable{
		A: Candidate{Name: patternA, Pattern: patternA},
		B: Candidate{Name: patternB, Pattern: patternB},
	}
}

// Validate checks that both slots have distinct, non-empty patterns
func (t CandidateTable) Validate() error {
	if strings.TrimSpace(t.A.Pattern) == "" || strings.TrimSpace(t.B.Pattern) == "" {
		return errors.New("candidate patterns must not be empty")
	}
	if t.A.Pattern == t.B.Pattern {
		return fmt.Errorf("candidate patterns must differ (both %q)", t.A.Pattern)
	}
	return nil
}

// Get returns the candidate for a slot
func (t CandidateTable) Get(slot Slot) Candidate {
	if slot == SlotA {
		return t.A
	}
	return t.B
}

// DisplayName returns the name shown for a slot, falling back to its pattern
func (t CandidateTable) DisplayName(slot Slot) string {
	c := t.Get(slot)
	if c.Name != "" {
		return c.Name
	}
	return c.Pattern
}

// Match returns the slot whose pattern occurs in name.
// Slot A is checked first.
func (t CandidateTable) Match(name string) (Slot, bool) {
	if t.A.Pattern != "" && strings.Contains(name, t.A.Pattern) {
		return SlotA, true
	}
	if t.B.Pattern != "" && strings.Contains(name, t.B.Pattern) {
		return SlotB, true
	}
	return SlotA, false
}
