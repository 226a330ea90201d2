package controller

import (
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/ladder-sim/ladder-sim/sim"
	"github.com/ladder-sim/ladder-sim/sim/trace"
)

// Option customizes a Controller. Options that touch the simulation
// configuration are applied before validation.
type Option func(*Controller)

// WithSimulations sets the number of independent simulations in the batch.
func WithSimulations(n int) Option {
	return func(c *Controller) { c.numSims = n }
}

// WithSeed fixes the master seed, making the batch reproducible.
func WithSeed(seed int64) Option {
	return func(c *Controller) { c.seed = seed }
}

// WithWorkers bounds how many simulations run concurrently.
func WithWorkers(n int) Option {
	return func(c *Controller) { c.workers = n }
}

// WithTraceLevel enables per-cycle trace collection.
func WithTraceLevel(level trace.TraceLevel) Option {
	return func(c *Controller) { c.traceLevel = level }
}

// WithLogger routes batch progress to log. Without it the controller is silent.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithAttritionRate overrides the percent of each level replaced per cycle.
func WithAttritionRate(rate int) Option {
	return func(c *Controller) { c.cfg.AttritionRate = rate }
}

// WithIterations overrides the number of promotion cycles per simulation.
func WithIterations(n int) Option {
	return func(c *Controller) { c.cfg.Iterations = n }
}

// WithCapacities overrides the level ladder.
func WithCapacities(capacities sim.LevelLadder) Option {
	return func(c *Controller) { c.cfg.Capacities = slices.Clone(capacities) }
}
