package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/vote-projector/internal/county"
	"github.com/pfrederiksen/vote-projector/internal/logger"
)

// Result holds everything extraction learned from one document
type Result struct {
	// Outcomes are in document order, one per county section
	Outcomes []county.Outcome
	// PercentObservations holds every parsed percent-reported value, including
	// those of counties later skipped for a missing total-votes element
	PercentObservations []float64
}

// Options configures an Extractor
type Options struct {
	Candidates county.CandidateTable
	Selectors  Selectors
	Logger     *logger.Logger
	Metrics    *logger.Metrics
}

// Extractor turns county sections of a results document into county outcomes
type Extractor struct {
	candidates county.CandidateTable
	sel        Selectors
	log        *logger.Logger
	metrics    *logger.Metrics
}

// New creates an Extractor. Zero-valued options fall back to the default
// candidate table, the default selectors and a discarding logger.
func New(opts Options) (*Extractor, error) {
	candidates := opts.Candidates
	if candidates == (county.CandidateTable{}) {
		candidates = county.DefaultCandidates()
	}
	if err := candidates.Validate(); err != nil {
		return nil, fmt.Errorf("invalid candidates: %w", err)
	}

	sel := opts.Selectors.Merge(DefaultSelectors())
	if err := sel.Validate(); err != nil {
		return nil, fmt.Errorf("invalid selectors: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Extractor{
		candidates: candidates,
		sel:        sel,
		log:        log,
		metrics:    opts.Metrics,
	}, nil
}

// ExtractDocument is Extract over the whole document
func (e *Extractor) ExtractDocument(doc *goquery.Document) Result {
	return e.Extract(doc.Selection)
}

// Extract walks every county section under root in document order.
// A county that fails never stops the walk; it becomes a skip outcome.
func (e *Extractor) Extract(root *goquery.Selection) Result {
	return e.extractSections(root.Find(e.sel.County))
}

func (e *Extractor) extractSections(sections *goquery.Selection) Result {
	res := Result{
		Outcomes:            make([]county.Outcome, 0),
		PercentObservations: make([]float64, 0),
	}

	sections.Each(func(i int, section *goquery.Selection) {
		outcome, percent, observed := e.extractCounty(section)
		if observed {
			res.PercentObservations = append(res.PercentObservations, percent)
		}
		res.Outcomes = append(res.Outcomes, outcome)

		if outcome.OK() {
			e.metrics.IncrCounter("counties.parsed")
			e.log.Debug("Parsed county", logger.Fields{
				"county":           outcome.County.Name,
				"percent_reported": outcome.County.PercentReported,
				"total_votes":      outcome.County.TotalVotes,
			})
			return
		}

		e.metrics.IncrCounter("counties.skipped")
		e.log.Error("Skipping county", logger.Fields{
			"county": outcome.Skip.Name,
			"reason": outcome.Skip.Reason,
			"index":  i,
		}, outcome.Skip.Err)
	})

	return res
}

// extractCounty builds the outcome for one section. observed reports whether a
// percent-reported value was parsed, independent of the outcome.
func (e *Extractor) extractCounty(section *goquery.Selection) (outcome county.Outcome, percent float64, observed bool) {
	name := county.UnknownName

	defer func() {
		if r := recover(); r != nil {
			outcome = county.Skipped(name, county.ReasonUnexpected, fmt.Errorf("%v", r))
		}
	}()

	if v, ok := section.Attr(e.sel.NameAttr); ok && strings.TrimSpace(v) != "" {
		name = strings.TrimSpace(v)
	}

	percentNode := section.Find(e.sel.Percent).First()
	if percentNode.Length() == 0 {
		return county.Skipped(name, county.ReasonMissingPercent, nil), 0, false
	}
	percent, err := county.ParsePercent(percentNode.Text())
	if err != nil {
		return county.Skipped(name, county.ReasonInvalidPercent, err), 0, false
	}
	observed = true

	totalNode := section.Find(e.sel.TotalVotes).First()
	if totalNode.Length() == 0 {
		return county.Skipped(name, county.ReasonMissingTotal, nil), percent, true
	}
	total, err := county.ParseTotalVotes(totalNode.Text())
	if err != nil {
		return county.Skipped(name, county.ReasonInvalidTotal, err), percent, true
	}

	c := county.County{
		Name:            name,
		PercentReported: percent,
		TotalVotes:      total,
	}
	e.readCandidateRows(section, &c)

	return county.Valid(c), percent, observed
}

// readCandidateRows fills the candidate tallies of c. When several rows match
// the same candidate the last one wins.
func (e *Extractor) readCandidateRows(section *goquery.Selection, c *county.County) {
	section.Find(e.sel.Row).Each(func(_ int, row *goquery.Selection) {
		candidateCell := row.Find(e.sel.CandidateCell).First()
		votesCell := row.Find(e.sel.VotesCell).First()
		if candidateCell.Length() == 0 || votesCell.Length() == 0 {
			return
		}

		nameNode := candidateCell.Find(e.sel.CandidateName).First()
		if nameNode.Length() == 0 {
			return
		}

		slot, ok := e.candidates.Match(strings.TrimSpace(nameNode.Text()))
		if !ok {
			return
		}

		votes := county.ParseCandidateVotes(votesCell.Text())
		if slot == county.SlotA {
			c.CandidateAVotes = votes
		} else {
			c.CandidateBVotes = votes
		}
	})
}
