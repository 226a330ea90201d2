package controller

import (
	"fmt"
	"io"
	"strings"

	"github.com/ladder-sim/ladder-sim/sim"
)

// WriteHeader describes the batch parameters in plain text.
func WriteHeader(w io.Writer, cfg sim.SimConfig, numSims int) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Running %d simulations.\n", numSims)
	fmt.Fprintf(w, "%2d%% bias for %s\n", cfg.EffectiveBias(), cfg.Favors)
	fmt.Fprintf(w, "%2d promotion cycles\n", cfg.Iterations)
	fmt.Fprintf(w, "%2d%% attrition rate\n", cfg.AttritionRate)
	fmt.Fprintln(w, "Attrition is random")
}

// WriteTable prints one row per level (1-based) with men and women percentages.
func (a AggregateResult) WriteTable(w io.Writer) {
	fmt.Fprintln(w, "Level\tMen\tWomen\tMen sd")
	fmt.Fprintln(w, "\t%\t%\t%")
	fmt.Fprintln(w, "-----\t"+strings.Repeat("-", 24))
	for lvl := range a.MenPercentByLevel {
		sd := 0.0
		if lvl < len(a.MenStdDevByLevel) {
			sd = a.MenStdDevByLevel[lvl]
		}
		fmt.Fprintf(w, "%d\t%.2f\t%.2f\t%.2f\n", lvl+1, a.MenPercentByLevel[lvl], a.WomenPercentByLevel[lvl], sd)
	}
	fmt.Fprintln(w)
}
