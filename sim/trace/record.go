// Package trace provides per-cycle recording for promotion ladder runs.
// This package has no dependencies on sim/ or sim/controller/; it stores pure data types.
package trace

// LevelRecord captures what happened at one level during one cycle.
type LevelRecord struct {
	Level         int
	AttritedMen   int
	AttritedWomen int
	FilledMen     int // promoted from below, or hired at level 0
	FilledWomen   int
	Men           int // composition after the cycle
	Women         int
}

// Filled returns the number of vacancies filled at the level.
func (r LevelRecord) Filled() int { return r.FilledMen + r.FilledWomen }

// Attrited returns the number of departures at the level.
func (r LevelRecord) Attrited() int { return r.AttritedMen + r.AttritedWomen }

// CycleRecord captures one full pass of attrition and promotion.
type CycleRecord struct {
	Cycle  int // zero-based
	Levels []LevelRecord
}
