package sim

import (
	"fmt"
	"slices"
)

// Defaults reproduce the published model: 30 simulations of 20 promotion
// cycles over an 8-level ladder with 15% attrition.
const (
	DefaultAttritionRate  = 15
	DefaultIterations     = 20
	DefaultNumSimulations = 30
	DefaultHireMenPercent = 50
)

// DefaultCapacities returns the 8-level ladder, entry level first.
func DefaultCapacities() LevelLadder {
	return LevelLadder{500, 350, 200, 150, 100, 75, 40, 10}
}

// LevelLadder is the fixed number of positions at each level, level 0 being
// entry-level and the last element the most senior.
type LevelLadder []int

// Len returns the number of levels.
func (l LevelLadder) Len() int { return len(l) }

// Total returns the number of positions across all levels.
func (l LevelLadder) Total() int {
	total := 0
	for _, c := range l {
		total += c
	}
	return total
}

// Validate checks that the ladder has at least one level and that every
// capacity is positive.
func (l LevelLadder) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("%w: capacity ladder must have at least one level", ErrConfiguration)
	}
	for i, c := range l {
		if c <= 0 {
			return fmt.Errorf("%w: capacity at level %d must be positive, got %d", ErrConfiguration, i, c)
		}
	}
	return nil
}

// SeedingMode selects how levels are populated before the first cycle.
type SeedingMode string

const (
	// SeedingPromotion hires level 0 and fills each higher level by promotion
	// draws from the level below.
	SeedingPromotion SeedingMode = "promotion"
	// SeedingFlat starts every level at 50/50.
	SeedingFlat SeedingMode = "flat"
)

// RoundingMode selects how a fractional attrition count becomes a whole number.
type RoundingMode string

const (
	// RoundingExpected rounds probabilistically so the expected removal equals
	// capacity * rate exactly.
	RoundingExpected RoundingMode = "expected"
	// RoundingNearest rounds half up.
	RoundingNearest RoundingMode = "nearest"
)

var (
	validSeedingModes  = map[SeedingMode]bool{"": true, SeedingPromotion: true, SeedingFlat: true}
	validRoundingModes = map[RoundingMode]bool{"": true, RoundingExpected: true, RoundingNearest: true}
)

// SimConfig is the read-only configuration shared by every engine in a batch.
type SimConfig struct {
	Favors            Gender       // gender the promotion bias favors
	PromotionBias     int          // percentage points added to the favored weight; clamped to [0, 100]
	AttritionRate     int          // percent of each level replaced per cycle, [0, 100]
	Iterations        int          // promotion cycles per simulation, >= 0
	Capacities        LevelLadder  // positions per level, entry first
	HireMenPercent    int          // share of external entry-level hires who are men, [0, 100]
	Seeding           SeedingMode  // "" = SeedingPromotion
	AttritionRounding RoundingMode // "" = RoundingExpected
}

// DefaultSimConfig returns the published configuration with the given bias.
func DefaultSimConfig(favors Gender, promotionBias int) SimConfig {
	return NewSimConfig(favors, promotionBias, DefaultAttritionRate, DefaultIterations, DefaultCapacities())
}

// NewSimConfig builds a SimConfig with gender-neutral hiring, promotion
// seeding and expected-value attrition rounding. The ladder is copied so later
// mutation of the caller's slice cannot reach running engines.
func NewSimConfig(favors Gender, promotionBias, attritionRate, iterations int, capacities LevelLadder) SimConfig {
	return SimConfig{
		Favors:            favors,
		PromotionBias:     promotionBias,
		AttritionRate:     attritionRate,
		Iterations:        iterations,
		Capacities:        slices.Clone(capacities),
		HireMenPercent:    DefaultHireMenPercent,
		Seeding:           SeedingPromotion,
		AttritionRounding: RoundingExpected,
	}
}

// Validate reports the first configuration problem found, wrapped in
// ErrConfiguration. PromotionBias is never rejected; see EffectiveBias.
func (c SimConfig) Validate() error {
	if !c.Favors.IsValid() {
		return fmt.Errorf("%w: unknown favored gender %q; valid: men, women", ErrConfiguration, c.Favors)
	}
	if err := c.Capacities.Validate(); err != nil {
		return err
	}
	if c.AttritionRate < 0 || c.AttritionRate > 100 {
		return fmt.Errorf("%w: attrition rate must be in [0, 100], got %d", ErrConfiguration, c.AttritionRate)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("%w: iterations must be non-negative, got %d", ErrConfiguration, c.Iterations)
	}
	if c.HireMenPercent < 0 || c.HireMenPercent > 100 {
		return fmt.Errorf("%w: hire men percent must be in [0, 100], got %d", ErrConfiguration, c.HireMenPercent)
	}
	if !validSeedingModes[c.Seeding] {
		return fmt.Errorf("%w: unknown seeding mode %q; valid: promotion, flat", ErrConfiguration, c.Seeding)
	}
	if !validRoundingModes[c.AttritionRounding] {
		return fmt.Errorf("%w: unknown attrition rounding %q; valid: expected, nearest", ErrConfiguration, c.AttritionRounding)
	}
	return nil
}

// EffectiveBias returns PromotionBias clamped to [0, 100].
func (c SimConfig) EffectiveBias() int {
	return clampBias(c.PromotionBias)
}

func clampBias(bias int) int {
	return min(max(bias, 0), 100)
}

// BiasClamped reports whether PromotionBias lies outside [0, 100].
func (c SimConfig) BiasClamped() bool {
	return c.EffectiveBias() != c.PromotionBias
}

func (c SimConfig) seeding() SeedingMode {
	if c.Seeding == "" {
		return SeedingPromotion
	}
	return c.Seeding
}

func (c SimConfig) rounding() RoundingMode {
	if c.AttritionRounding == "" {
		return RoundingExpected
	}
	return c.AttritionRounding
}
