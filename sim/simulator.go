// sim/simulator.go
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"slices"

	"github.com/ladder-sim/ladder-sim/sim/trace"
)

// Simulator owns one organizational hierarchy and evolves it through a fixed
// number of promotion cycles. It tracks counts only; employees are anonymous.
//
// A Simulator is not safe for concurrent use. Independent Simulators share
// nothing and may run on separate goroutines.
type Simulator struct {
	cfg    SimConfig
	rng    *rand.Rand
	levels []LevelState
	// Cycle is the number of cycles completed so far.
	Cycle int
	done  bool
	trace *trace.SimulationTrace
}

// NewSimulator validates cfg and seeds the initial ladder using rng.
// rng is the simulator's only source of randomness.
func NewSimulator(cfg SimConfig, rng *rand.Rand) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrConfiguration)
	}
	cfg.Capacities = slices.Clone(cfg.Capacities)

	s := &Simulator{
		cfg:    cfg,
		rng:    rng,
		levels: make([]LevelState, cfg.Capacities.Len()),
	}
	s.seed()
	checkCapacity(s.levels, s.cfg.Capacities, "seed")
	return s, nil
}

// SetTrace attaches a trace that receives one record per cycle.
// Passing nil, or a trace whose level is none, disables recording.
func (s *Simulator) SetTrace(st *trace.SimulationTrace) {
	if st != nil && !st.Config.Enabled() {
		st = nil
	}
	s.trace = st
}

// Config returns the simulator's configuration.
func (s *Simulator) Config() SimConfig {
	cfg := s.cfg
	cfg.Capacities = slices.Clone(s.cfg.Capacities)
	return cfg
}

// State returns a copy of the current per-level composition.
func (s *Simulator) State() []LevelState {
	return slices.Clone(s.levels)
}

// Run executes exactly cfg.Iterations cycles.
func (s *Simulator) Run() error {
	return s.RunContext(context.Background())
}

// RunContext executes the remaining cycles, checking ctx between cycles.
// A cancelled run keeps its partial state and may be resumed by calling
// RunContext again; Result stays unavailable until all cycles complete.
func (s *Simulator) RunContext(ctx context.Context) error {
	if s.done {
		return fmt.Errorf("%w: simulator already ran %d cycles", ErrInvalidState, s.Cycle)
	}
	for s.Cycle < s.cfg.Iterations {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.step()
		s.Cycle++
	}
	s.done = true
	return nil
}

// Result returns the final per-level composition. It fails with
// ErrInvalidState until Run has completed.
func (s *Simulator) Result() (SimulationResult, error) {
	if !s.done {
		return SimulationResult{}, fmt.Errorf("%w: result requested after %d of %d cycles", ErrInvalidState, s.Cycle, s.cfg.Iterations)
	}
	return SimulationResult{Levels: slices.Clone(s.levels)}, nil
}

// seed populates every level before the first cycle.
func (s *Simulator) seed() {
	caps := s.cfg.Capacities
	if s.cfg.seeding() == SeedingFlat {
		for i, c := range caps {
			s.levels[i] = splitEven(c, 0.5, s.cfg.Favors.Other())
		}
		return
	}

	s.levels[0] = s.hire(caps[0])
	for k := 1; k < len(caps); k++ {
		s.levels[k] = s.promote(s.levels[k-1], caps[k])
	}
}

// step runs one cycle: attrition everywhere, then refill from the top down so
// each level draws from the post-attrition population below it.
func (s *Simulator) step() {
	caps := s.cfg.Capacities
	records := make([]trace.LevelRecord, len(caps))

	for i := range s.levels {
		n := attritionCount(s.rng, caps[i], s.cfg.AttritionRate, s.cfg.rounding())
		records[i].Level = i
		records[i].AttritedMen, records[i].AttritedWomen = attrit(s.rng, &s.levels[i], n)
	}

	for k := len(caps) - 1; k >= 0; k-- {
		vacancies := caps[k] - s.levels[k].Total()
		var filled LevelState
		if k == 0 {
			filled = s.hire(vacancies)
		} else {
			filled = s.promote(s.levels[k-1], vacancies)
		}
		s.levels[k].Men += filled.Men
		s.levels[k].Women += filled.Women
		checkCapacity(s.levels[k:k+1], caps[k:k+1], fmt.Sprintf("cycle %d level %d", s.Cycle, k))

		records[k].FilledMen, records[k].FilledWomen = filled.Men, filled.Women
		records[k].Men, records[k].Women = s.levels[k].Men, s.levels[k].Women
	}

	s.trace.RecordCycle(trace.CycleRecord{Cycle: s.Cycle, Levels: records})
}

// hire fills n entry-level vacancies from outside the organization.
func (s *Simulator) hire(n int) LevelState {
	men := drawCount(s.rng, n, float64(s.cfg.HireMenPercent)/100)
	return LevelState{Men: men, Women: n - men}
}

// promote fills n vacancies by independent draws, with replacement, from pool.
func (s *Simulator) promote(pool LevelState, n int) LevelState {
	favors := s.cfg.Favors
	p := PromotionProbability(pool.Share(favors), s.cfg.EffectiveBias())
	var out LevelState
	out.add(favors, drawCount(s.rng, n, p))
	out.add(favors.Other(), n-out.Count(favors))
	return out
}
