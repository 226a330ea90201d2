package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalCycles   int
	TotalAttrited int
	TotalFilled   int
	// FilledMenShare is, per level, the fraction of all filled vacancies that
	// went to men. Levels with no fills report 0.
	FilledMenShare []float64
	// FilledFavoredShare is the same fraction for the gender named by
	// TraceConfig.Favored. Nil when the trace does not name one.
	FilledFavoredShare []float64
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{}
	if st == nil || len(st.Cycles) == 0 {
		return summary
	}

	summary.TotalCycles = len(st.Cycles)
	numLevels := len(st.Cycles[0].Levels)
	men := make([]int, numLevels)
	filled := make([]int, numLevels)

	for _, c := range st.Cycles {
		for _, l := range c.Levels {
			summary.TotalAttrited += l.Attrited()
			summary.TotalFilled += l.Filled()
			if l.Level < numLevels {
				men[l.Level] += l.FilledMen
				filled[l.Level] += l.Filled()
			}
		}
	}

	summary.FilledMenShare = make([]float64, numLevels)
	for i := range filled {
		if filled[i] > 0 {
			summary.FilledMenShare[i] = float64(men[i]) / float64(filled[i])
		}
	}

	switch st.Config.Favored {
	case "men":
		summary.FilledFavoredShare = append([]float64(nil), summary.FilledMenShare...)
	case "women":
		summary.FilledFavoredShare = make([]float64, numLevels)
		for i := range filled {
			if filled[i] > 0 {
				summary.FilledFavoredShare[i] = 1 - summary.FilledMenShare[i]
			}
		}
	}
	return summary
}
