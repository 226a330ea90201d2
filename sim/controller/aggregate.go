package controller

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/ladder-sim/ladder-sim/sim"
)

// AggregateResult is the batch-averaged gender composition per level, entry
// level first. It is the only artifact exposed past the core.
type AggregateResult struct {
	MenPercentByLevel   []float64
	WomenPercentByLevel []float64
	// MenStdDevByLevel is the sample standard deviation of the per-run men
	// percentage at each level; all zeros for a single run.
	MenStdDevByLevel []float64
	PromotionBias    int
	Favors           sim.Gender
	Simulations      int
}

// Aggregate reduces per-run results to per-level percentages. Counts are
// pooled across runs before dividing, so every run weighs by its headcount.
func Aggregate(results []sim.SimulationResult, favors sim.Gender, promotionBias int) (AggregateResult, error) {
	if len(results) == 0 {
		return AggregateResult{}, fmt.Errorf("%w: no simulation results to aggregate", sim.ErrInvalidState)
	}
	numLevels := len(results[0].Levels)

	menTotals := make([]int, numLevels)
	womenTotals := make([]int, numLevels)
	perRunMen := make([][]float64, numLevels)
	for i := range perRunMen {
		perRunMen[i] = make([]float64, 0, len(results))
	}

	for r, res := range results {
		if len(res.Levels) != numLevels {
			return AggregateResult{}, fmt.Errorf("%w: run %d has %d levels, run 0 has %d", sim.ErrDegenerateAggregate, r, len(res.Levels), numLevels)
		}
		for lvl, l := range res.Levels {
			menTotals[lvl] += l.Men
			womenTotals[lvl] += l.Women
			if l.Total() > 0 {
				perRunMen[lvl] = append(perRunMen[lvl], 100*float64(l.Men)/float64(l.Total()))
			}
		}
	}

	agg := AggregateResult{
		MenPercentByLevel:   make([]float64, numLevels),
		WomenPercentByLevel: make([]float64, numLevels),
		MenStdDevByLevel:    make([]float64, numLevels),
		PromotionBias:       promotionBias,
		Favors:              favors,
		Simulations:         len(results),
	}
	for lvl := 0; lvl < numLevels; lvl++ {
		total := menTotals[lvl] + womenTotals[lvl]
		if total == 0 {
			return AggregateResult{}, fmt.Errorf("%w: level %d has no employees across %d runs", sim.ErrDegenerateAggregate, lvl, len(results))
		}
		agg.MenPercentByLevel[lvl] = 100 * float64(menTotals[lvl]) / float64(total)
		agg.WomenPercentByLevel[lvl] = 100 * float64(womenTotals[lvl]) / float64(total)
		if len(perRunMen[lvl]) > 1 {
			agg.MenStdDevByLevel[lvl] = stat.StdDev(perRunMen[lvl], nil)
		}
	}
	return agg, nil
}

// Levels returns the number of levels in the aggregate.
func (a AggregateResult) Levels() int { return len(a.MenPercentByLevel) }

// PercentByLevel returns the percentage series for gender g.
func (a AggregateResult) PercentByLevel(g sim.Gender) []float64 {
	if g == sim.Men {
		return a.MenPercentByLevel
	}
	return a.WomenPercentByLevel
}

// MarshalJSON encodes the result as the ordered list
// [men_percentages, women_percentages, promotion_bias, favored_gender].
func (a AggregateResult) MarshalJSON() ([]byte, error) {
	men, women := a.MenPercentByLevel, a.WomenPercentByLevel
	if men == nil {
		men = []float64{}
	}
	if women == nil {
		women = []float64{}
	}
	return json.Marshal([]any{men, women, a.PromotionBias, a.Favors})
}

// UnmarshalJSON decodes the ordered-list form written by MarshalJSON.
func (a *AggregateResult) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("decoding aggregate result: %w", err)
	}
	if len(parts) != 4 {
		return fmt.Errorf("decoding aggregate result: want 4 elements, got %d", len(parts))
	}
	var out AggregateResult
	if err := json.Unmarshal(parts[0], &out.MenPercentByLevel); err != nil {
		return fmt.Errorf("decoding men percentages: %w", err)
	}
	if err := json.Unmarshal(parts[1], &out.WomenPercentByLevel); err != nil {
		return fmt.Errorf("decoding women percentages: %w", err)
	}
	if err := json.Unmarshal(parts[2], &out.PromotionBias); err != nil {
		return fmt.Errorf("decoding promotion bias: %w", err)
	}
	if err := json.Unmarshal(parts[3], &out.Favors); err != nil {
		return fmt.Errorf("decoding favored gender: %w", err)
	}
	*a = out
	return nil
}
