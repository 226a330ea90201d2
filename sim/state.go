package sim

import (
	"fmt"
	"slices"
)

// LevelState is the gender composition of one level.
type LevelState struct {
	Men   int `json:"men" yaml:"men"`
	Women int `json:"women" yaml:"women"`
}

// Total returns the number of employees at the level.
func (s LevelState) Total() int { return s.Men + s.Women }

// Count returns the number of employees of gender g.
func (s LevelState) Count(g Gender) int {
	if g == Men {
		return s.Men
	}
	return s.Women
}

// Share returns the fraction of the level that is gender g.
// An empty level has no composition; Share returns 0.5 for it.
func (s LevelState) Share(g Gender) float64 {
	total := s.Total()
	if total == 0 {
		return 0.5
	}
	return float64(s.Count(g)) / float64(total)
}

// add adjusts the count of gender g by delta.
func (s *LevelState) add(g Gender, delta int) {
	if g == Men {
		s.Men += delta
	} else {
		s.Women += delta
	}
}

// splitEven divides capacity into a men/women pair at the given men share,
// assigning the rounding remainder to whichever count is currently smaller.
// On a tie the remainder goes to tieBreak.
func splitEven(capacity int, menShare float64, tieBreak Gender) LevelState {
	exact := float64(capacity) * menShare
	s := LevelState{Men: int(exact)}
	s.Women = int(float64(capacity) * (1 - menShare))
	for rem := capacity - s.Total(); rem > 0; rem-- {
		switch {
		case s.Men < s.Women:
			s.Men++
		case s.Women < s.Men:
			s.Women++
		default:
			s.add(tieBreak, 1)
		}
	}
	return s
}

// SimulationResult is the frozen final state of one engine run.
type SimulationResult struct {
	Levels []LevelState `json:"levels"`
}

// Men returns the number of men at level.
func (r SimulationResult) Men(level int) int { return r.Levels[level].Men }

// Women returns the number of women at level.
func (r SimulationResult) Women(level int) int { return r.Levels[level].Women }

// MenPercent returns the men percentage at each level of this single run.
func (r SimulationResult) MenPercent() []float64 {
	out := make([]float64, len(r.Levels))
	for i, l := range r.Levels {
		if l.Total() > 0 {
			out[i] = 100 * float64(l.Men) / float64(l.Total())
		}
	}
	return out
}

// Clone returns a deep copy of r.
func (r SimulationResult) Clone() SimulationResult {
	return SimulationResult{Levels: slices.Clone(r.Levels)}
}

// checkCapacity panics if any level does not hold exactly its capacity.
// A violation is an engine bug, not a user error.
func checkCapacity(levels []LevelState, capacities LevelLadder, where string) {
	for i, l := range levels {
		if l.Men < 0 || l.Women < 0 || l.Total() != capacities[i] {
			panic(fmt.Sprintf("%s: level %d holds (%d men, %d women), capacity %d", where, i, l.Men, l.Women, capacities[i]))
		}
	}
}
