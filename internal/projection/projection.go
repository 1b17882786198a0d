// Package projection extrapolates partial county results to projected final
// counts and folds them into a statewide outcome.
//
// Each county's candidates are assumed to keep their current share of the
// ballots counted so far; the expected ballot total is the reported total
// divided by the fraction reported. Every division has an explicit zero or
// identity fallback, so projection never fails and never yields Inf or NaN.
package projection

import (
	"math"

	"github.com/pfrederiksen/vote-projector/internal/county"
	"github.com/pfrederiksen/vote-projector/internal/extract"
)

// CountyProjection is the projected contribution of one county
type CountyProjection struct {
	County         county.County `json:"county"`
	RatioA         float64       `json:"ratio_a"`
	RatioB         float64       `json:"ratio_b"`
	ProjectedTotal float64       `json:"projected_total"`
	ProjectedA     float64       `json:"projected_a"`
	ProjectedB     float64       `json:"projected_b"`
}

// StateProjection is the aggregate outcome of one run
type StateProjection struct {
	State                  string                `json:"state,omitempty"`
	Candidates             county.CandidateTable `json:"candidates"`
	Counties               []CountyProjection    `json:"counties"`
	Skipped                []county.Skip         `json:"skipped"`
	ProjectedATotal        float64               `json:"projected_a_total"`
	ProjectedBTotal        float64               `json:"projected_b_total"`
	Total                  float64               `json:"total"`
	PercentA               float64               `json:"percent_a"`
	PercentB               float64               `json:"percent_b"`
	AveragePercentReported float64               `json:"average_percent_reported"`
	ErrorMargin            float64               `json:"error_margin"`
	Winner                 county.Slot           `json:"winner"`
	WinnerName             string                `json:"winner_name"`
}

// Options carries the run-level labels applied to an aggregate
type Options struct {
	State      string
	Candidates county.CandidateTable
}

// Project computes the projected contribution of a single county
func Project(c county.County) CountyProjection {
	p := CountyProjection{County: c}

	total := float64(c.TotalVotes)
	if c.TotalVotes != 0 {
		p.RatioA = float64(c.CandidateAVotes) / total
		p.RatioB = float64(c.CandidateBVotes) / total
	}

	// A subnormal percent overflows the quotient; keep the reported total.
	p.ProjectedTotal = total
	if c.PercentReported > 0 {
		if projected := total / c.PercentReported; !math.IsInf(projected, 0) && !math.IsNaN(projected) {
			p.ProjectedTotal = projected
		}
	}

	p.ProjectedA = p.ProjectedTotal * p.RatioA
	p.ProjectedB = p.ProjectedTotal * p.RatioB
	return p
}

// ErrorMargin averages the observed percent-reported fractions and returns
// the average together with (1 - average) * 100. With no observations the
// average is 1 and the margin 0.
func ErrorMargin(observations []float64) (average, margin float64) {
	average = 1
	if len(observations) > 0 {
		var sum float64
		for _, o := range observations {
			sum += o
		}
		average = sum / float64(len(observations))
	}
	return average, (1 - average) * 100
}

// Winner returns SlotA only when a is strictly greater than b
func Winner(a, b float64) county.Slot {
	if a > b {
		return county.SlotA
	}
	return county.SlotB
}

// Shares returns the percentage of total held by a and b, or zeros when the total is zero
func Shares(a, b float64) (pctA, pctB float64) {
	total := a + b
	if total == 0 {
		return 0, 0
	}
	return a / total * 100, b / total * 100
}

// Aggregate partitions extraction outcomes, projects every valid county and
// folds them into a StateProjection. Skipped counties contribute nothing to the
// totals; the error margin is taken from all percent observations regardless.
func Aggregate(res extract.Result, opts Options) *StateProjection {
	candidates := opts.Candidates
	if candidates == (county.CandidateTable{}) {
		candidates = county.DefaultCandidates()
	}

	counties, skipped := county.Partition(res.Outcomes)

	sp := &StateProjection{
		State:      opts.State,
		Candidates: candidates,
		Counties:   make([]CountyProjection, 0, len(counties)),
		Skipped:    skipped,
	}

	for _, c := range counties {
		p := Project(c)
		sp.Counties = append(sp.Counties, p)
		sp.ProjectedATotal += p.ProjectedA
		sp.ProjectedBTotal += p.ProjectedB
	}

	sp.Total = sp.ProjectedATotal + sp.ProjectedBTotal
	sp.PercentA, sp.PercentB = Shares(sp.ProjectedATotal, sp.ProjectedBTotal)
	sp.AveragePercentReported, sp.ErrorMargin = ErrorMargin(res.PercentObservations)
	sp.Winner = Winner(sp.ProjectedATotal, sp.ProjectedBTotal)
	sp.WinnerName = candidates.DisplayName(sp.Winner)

	return sp
}
