package extract

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// Selectors locates the parts of a county section in the results markup.
// All fields except NameAttr are CSS selectors; NameAttr is an attribute name.
type Selectors struct {
	County        string `json:"county" toml:"county"`
	NameAttr      string `json:"name_attr" toml:"name-attr"`
	Percent       string `json:"percent" toml:"percent"`
	TotalVotes    string `json:"total_votes" toml:"total-votes"`
	Row           string `json:"row" toml:"row"`
	CandidateCell string `json:"candidate_cell" toml:"candidate-cell"`
	VotesCell     string `json:"votes_cell" toml:"votes-cell"`
	CandidateName string `json:"candidate_name" toml:"candidate-name"`
}

// DefaultSelectors matches the county-row layout of the results page
func DefaultSelectors() Selectors {
	return Selectors{
		County:        `div[data-testid="county-row"]`,
		NameAttr:      "data-monitoring",
		Percent:       "span.percent-in",
		TotalVotes:    `span[data-testid="state-results-table-area-votes"]`,
		Row:           "tr",
		CandidateCell: `td[data-type="candidate"]`,
		VotesCell:     `td[data-type="votes"]`,
		CandidateName: `span[data-testid="text--m"]`,
	}
}

// Merge returns s with every empty field taken from fallback
func (s Selectors) Merge(fallback Selectors) Selectors {
	pick := func(v, def string) string {
		if v != "" {
			return v
		}
		return def
	}
	return Selectors{
		County:        pick(s.County, fallback.County),
		NameAttr:      pick(s.NameAttr, fallback.NameAttr),
		Percent:       pick(s.Percent, fallback.Percent),
		TotalVotes:    pick(s.TotalVotes, fallback.TotalVotes),
		Row:           pick(s.Row, fallback.Row),
		CandidateCell: pick(s.CandidateCell, fallback.CandidateCell),
		VotesCell:     pick(s.VotesCell, fallback.VotesCell),
		CandidateName: pick(s.CandidateName, fallback.CandidateName),
	}
}

// Validate compiles every selector so a bad configuration fails before the
// document is walked rather than panicking inside goquery.
func (s Selectors) Validate() error {
	if s.NameAttr == "" {
		return fmt.Errorf("selector name-attr is empty")
	}
	checks := []struct {
		name, value string
	}{
		{"county", s.County},
		{"percent", s.Percent},
		{"total-votes", s.TotalVotes},
		{"row", s.Row},
		{"candidate-cell", s.CandidateCell},
		{"votes-cell", s.VotesCell},
		{"candidate-name", s.CandidateName},
	}
	for _, c := range checks {
		if c.value == "" {
			return fmt.Errorf("selector %s is empty", c.name)
		}
		if _, err := cascadia.Compile(c.value); err != nil {
			return fmt.Errorf("selector %s %q: %w", c.name, c.value, err)
		}
	}
	return nil
}
