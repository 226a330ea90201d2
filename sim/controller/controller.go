package controller

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ladder-sim/ladder-sim/sim"
	"github.com/ladder-sim/ladder-sim/sim/trace"
)

// Controller runs a batch of independent simulators with one configuration
// and aggregates their final ladders. A Controller is built per request and
// runs its batch once; it holds no process-wide state.
type Controller struct {
	cfg        sim.SimConfig
	numSims    int
	seed       int64
	workers    int
	traceLevel trace.TraceLevel
	log        logrus.FieldLogger

	hasRun  bool
	results []sim.SimulationResult
	traces  []*trace.SimulationTrace
}

// New validates cfg and the options and returns a Controller ready to run.
// No simulator is constructed until RunSimulations.
func New(cfg sim.SimConfig, opts ...Option) (*Controller, error) {
	silent := logrus.New()
	silent.SetOutput(io.Discard)

	c := &Controller{
		cfg:     cfg,
		numSims: sim.DefaultNumSimulations,
		seed:    time.Now().UnixNano(),
		workers: runtime.GOMAXPROCS(0),
		log:     silent,
	}
	c.cfg.Capacities = slices.Clone(cfg.Capacities)
	for _, opt := range opts {
		opt(c)
	}

	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	if c.numSims < 1 {
		return nil, fmt.Errorf("%w: number of simulations must be >= 1, got %d", sim.ErrConfiguration, c.numSims)
	}
	if c.workers < 1 {
		return nil, fmt.Errorf("%w: workers must be >= 1, got %d", sim.ErrConfiguration, c.workers)
	}
	if !trace.IsValidTraceLevel(string(c.traceLevel)) {
		return nil, fmt.Errorf("%w: unknown trace level %q; valid: none, cycles", sim.ErrConfiguration, c.traceLevel)
	}
	if c.cfg.BiasClamped() {
		c.log.Debugf("promotion bias %d clamped to %d", c.cfg.PromotionBias, c.cfg.EffectiveBias())
	}
	return c, nil
}

// Config returns the validated configuration shared by every simulator.
func (c *Controller) Config() sim.SimConfig {
	cfg := c.cfg
	cfg.Capacities = slices.Clone(c.cfg.Capacities)
	return cfg
}

// NumSimulations returns the batch size.
func (c *Controller) NumSimulations() int { return c.numSims }

// Seed returns the master seed from which every simulator's stream is derived.
func (c *Controller) Seed() int64 { return c.seed }

// RunSimulations runs the whole batch and blocks until every simulator has
// finished. Simulators run on at most `workers` goroutines. If ctx is
// cancelled before the batch completes, RunSimulations returns ctx's error and
// keeps no results.
func (c *Controller) RunSimulations(ctx context.Context) error {
	if c.hasRun {
		return fmt.Errorf("%w: batch already ran", sim.ErrInvalidState)
	}

	// PartitionedRNG is single-goroutine: derive every stream before fan-out.
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(c.seed))
	simulators := make([]*sim.Simulator, c.numSims)
	traces := make([]*trace.SimulationTrace, c.numSims)
	for i := range simulators {
		s, err := sim.NewSimulator(c.cfg, rng.ForEngine(i))
		if err != nil {
			return err
		}
		if c.traceLevel == trace.TraceLevelCycles {
			traces[i] = trace.NewSimulationTrace(trace.TraceConfig{Level: c.traceLevel, Favored: string(c.cfg.Favors)})
			s.SetTrace(traces[i])
		}
		simulators[i] = s
	}

	c.log.WithFields(logrus.Fields{
		"simulations": c.numSims,
		"workers":     c.workers,
		"seed":        c.seed,
		"favors":      c.cfg.Favors,
		"bias":        c.cfg.EffectiveBias(),
	}).Info("starting simulation batch")
	start := time.Now()

	results := make([]sim.SimulationResult, c.numSims)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, s := range simulators {
		g.Go(func() error {
			if err := s.RunContext(gctx); err != nil {
				return err
			}
			res, err := s.Result()
			if err != nil {
				return err
			}
			results[i] = res
			c.log.WithField("engine", i).Debug("simulation complete")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// A cancellation racing the last simulator still aborts the batch.
	if err := ctx.Err(); err != nil {
		return err
	}

	c.results = results
	c.traces = traces
	c.hasRun = true
	c.log.WithField("elapsed", time.Since(start)).Info("simulation batch complete")
	return nil
}

// Results returns a copy of every simulator's final ladder, in engine order.
func (c *Controller) Results() ([]sim.SimulationResult, error) {
	if !c.hasRun {
		return nil, fmt.Errorf("%w: results requested before the batch ran", sim.ErrInvalidState)
	}
	out := make([]sim.SimulationResult, len(c.results))
	for i, r := range c.results {
		out[i] = r.Clone()
	}
	return out, nil
}

// Traces returns the per-simulator cycle traces. Entries are nil unless the
// controller was built WithTraceLevel(trace.TraceLevelCycles).
func (c *Controller) Traces() []*trace.SimulationTrace {
	return slices.Clone(c.traces)
}

// FetchResults aggregates the batch into per-level gender percentages.
func (c *Controller) FetchResults() (AggregateResult, error) {
	if !c.hasRun {
		return AggregateResult{}, fmt.Errorf("%w: results requested before the batch ran", sim.ErrInvalidState)
	}
	return Aggregate(c.results, c.cfg.Favors, c.cfg.PromotionBias)
}

// ConfigureAndRun builds a controller from the published defaults with the
// given bias, applies opts, runs the batch and returns its aggregate.
func ConfigureAndRun(ctx context.Context, favors sim.Gender, promotionBias int, opts ...Option) (AggregateResult, error) {
	c, err := New(sim.DefaultSimConfig(favors, promotionBias), opts...)
	if err != nil {
		return AggregateResult{}, err
	}
	if err := c.RunSimulations(ctx); err != nil {
		return AggregateResult{}, err
	}
	return c.FetchResults()
}
