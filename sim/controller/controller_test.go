package controller

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladder-sim/ladder-sim/sim"
	"github.com/ladder-sim/ladder-sim/sim/trace"
)

// mustRunBatch builds a controller, runs it and returns the aggregate.
func mustRunBatch(t *testing.T, cfg sim.SimConfig, opts ...Option) (*Controller, AggregateResult) {
	t.Helper()
	c, err := New(cfg, opts...)
	require.NoError(t, err)
	require.NoError(t, c.RunSimulations(context.Background()))
	agg, err := c.FetchResults()
	require.NoError(t, err)
	return c, agg
}

func TestNew_InvalidCapacity_FailsBeforeAnyRun(t *testing.T) {
	cfg := sim.NewSimConfig(sim.Men, 1, 15, 20, sim.LevelLadder{500, 350, 0, 10})

	c, err := New(cfg, WithSimulations(5))

	assert.Nil(t, c)
	assert.True(t, errors.Is(err, sim.ErrConfiguration), "got %v", err)
}

func TestNew_InvalidOptions(t *testing.T) {
	cfg := sim.DefaultSimConfig(sim.Women, 2)
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero simulations", WithSimulations(0)},
		{"zero workers", WithWorkers(0)},
		{"unknown trace level", WithTraceLevel("decisions")},
		{"negative iterations", WithIterations(-1)},
		{"attrition above 100", WithAttritionRate(150)},
		{"empty ladder", WithCapacities(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(cfg, tt.opt)
			assert.True(t, errors.Is(err, sim.ErrConfiguration), "got %v", err)
		})
	}
}

func TestNew_DoesNotAliasCallerLadder(t *testing.T) {
	cfg := sim.NewSimConfig(sim.Men, 0, 10, 2, sim.LevelLadder{10, 5})
	c, err := New(cfg, WithSimulations(2), WithSeed(1))
	require.NoError(t, err)

	cfg.Capacities[1] = 0
	assert.Equal(t, sim.LevelLadder{10, 5}, c.Config().Capacities)
}

func TestFetchResults_BeforeRun_InvalidState(t *testing.T) {
	c, err := New(sim.DefaultSimConfig(sim.Men, 1))
	require.NoError(t, err)

	_, err = c.FetchResults()
	assert.True(t, errors.Is(err, sim.ErrInvalidState), "got %v", err)

	_, err = c.Results()
	assert.True(t, errors.Is(err, sim.ErrInvalidState), "got %v", err)
}

func TestRunSimulations_Twice_InvalidState(t *testing.T) {
	c, _ := mustRunBatch(t, sim.DefaultSimConfig(sim.Men, 1), WithSimulations(2), WithSeed(3))

	err := c.RunSimulations(context.Background())
	assert.True(t, errors.Is(err, sim.ErrInvalidState), "got %v", err)
}

func TestRunSimulations_Cancelled_KeepsNoResults(t *testing.T) {
	c, err := New(sim.DefaultSimConfig(sim.Men, 1), WithSimulations(8), WithSeed(3))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = c.RunSimulations(ctx)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)

	_, err = c.FetchResults()
	assert.True(t, errors.Is(err, sim.ErrInvalidState), "got %v", err)
}

func TestAggregate_SingleRun_EqualsOwnPercentages(t *testing.T) {
	// GIVEN a batch of one simulation
	c, agg := mustRunBatch(t, sim.DefaultSimConfig(sim.Women, 10), WithSimulations(1), WithSeed(8))
	results, err := c.Results()
	require.NoError(t, err)
	require.Len(t, results, 1)

	// THEN the aggregate is exactly that run's own per-level percentages
	own := results[0].MenPercent()
	assert.Equal(t, own, agg.MenPercentByLevel)
	for lvl, l := range results[0].Levels {
		assert.Equal(t, 100*float64(l.Women)/float64(l.Total()), agg.WomenPercentByLevel[lvl])
		assert.Equal(t, 0.0, agg.MenStdDevByLevel[lvl])
	}
	assert.Equal(t, 1, agg.Simulations)
}

func TestAggregate_PercentagesSumTo100(t *testing.T) {
	_, agg := mustRunBatch(t, sim.DefaultSimConfig(sim.Men, 5), WithSimulations(10), WithSeed(21))

	require.Equal(t, 8, agg.Levels())
	for lvl := 0; lvl < agg.Levels(); lvl++ {
		sum := agg.MenPercentByLevel[lvl] + agg.WomenPercentByLevel[lvl]
		assert.InDelta(t, 100.0, sum, 1e-9, "level %d", lvl)
	}
	assert.Equal(t, 5, agg.PromotionBias)
	assert.Equal(t, sim.Men, agg.Favors)
}

func TestRunSimulations_SameSeed_IndependentOfWorkerCount(t *testing.T) {
	cfg := sim.DefaultSimConfig(sim.Men, 3)
	_, serial := mustRunBatch(t, cfg, WithSimulations(12), WithSeed(77), WithWorkers(1))
	_, parallel := mustRunBatch(t, cfg, WithSimulations(12), WithSeed(77), WithWorkers(6))

	assert.Equal(t, serial, parallel)
}

func TestRunSimulations_DifferentSeeds_Differ(t *testing.T) {
	cfg := sim.DefaultSimConfig(sim.Men, 3)
	_, a := mustRunBatch(t, cfg, WithSimulations(4), WithSeed(1))
	_, b := mustRunBatch(t, cfg, WithSimulations(4), WithSeed(2))

	assert.NotEqual(t, a.MenPercentByLevel, b.MenPercentByLevel)
}

func TestRunSimulations_EnginesAreIndependent(t *testing.T) {
	// Runs within one batch must not replay the same stream.
	c, _ := mustRunBatch(t, sim.DefaultSimConfig(sim.Men, 0), WithSimulations(6), WithSeed(5))
	results, err := c.Results()
	require.NoError(t, err)

	for i := 1; i < len(results); i++ {
		assert.NotEqual(t, results[0].Levels, results[i].Levels, "run %d replays run 0", i)
	}
}

func TestConfigureAndRun_NoBias_NearHalfEverywhere(t *testing.T) {
	agg, err := ConfigureAndRun(context.Background(), sim.Men, 0, WithSimulations(200), WithSeed(2024))
	require.NoError(t, err)

	for lvl, p := range agg.MenPercentByLevel {
		assert.InDelta(t, 50.0, p, 5.0, "level %d", lvl)
	}
}

func TestConfigureAndRun_FullBiasForMen_Monotonic(t *testing.T) {
	agg, err := ConfigureAndRun(context.Background(), sim.Men, 100, WithSimulations(1000), WithSeed(2024))
	require.NoError(t, err)

	for lvl := 1; lvl < agg.Levels(); lvl++ {
		assert.Greater(t, agg.MenPercentByLevel[lvl], agg.MenPercentByLevel[lvl-1], "level %d", lvl)
	}
}

func TestConfigureAndRun_FullBiasForWomen_WomenRise(t *testing.T) {
	agg, err := ConfigureAndRun(context.Background(), sim.Women, 100, WithSimulations(200), WithSeed(9))
	require.NoError(t, err)

	top := agg.Levels() - 1
	assert.Greater(t, agg.WomenPercentByLevel[top], 90.0)
	assert.InDelta(t, 50.0, agg.WomenPercentByLevel[0], 3.0)
}

func TestConfigureAndRun_OptionsOverrideDefaults(t *testing.T) {
	agg, err := ConfigureAndRun(context.Background(), sim.Men, 0,
		WithSimulations(3), WithSeed(4), WithCapacities(sim.LevelLadder{10, 10}),
		WithAttritionRate(0), WithIterations(1))
	require.NoError(t, err)

	assert.Equal(t, 2, agg.Levels())
	assert.Equal(t, 3, agg.Simulations)
}

func TestConfigureAndRun_ZeroIterations_SeededState(t *testing.T) {
	cfg := sim.NewSimConfig(sim.Men, 0, 15, 0, sim.LevelLadder{10, 10})
	cfg.Seeding = sim.SeedingFlat

	c, agg := mustRunBatch(t, cfg, WithSimulations(4), WithSeed(1))

	assert.Equal(t, []float64{50, 50}, agg.MenPercentByLevel)
	results, err := c.Results()
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, []sim.LevelState{{Men: 5, Women: 5}, {Men: 5, Women: 5}}, r.Levels)
	}
}

func TestTraces_CollectedWhenEnabled(t *testing.T) {
	cfg := sim.NewSimConfig(sim.Men, 10, 15, 4, sim.LevelLadder{20, 10, 5})
	c, _ := mustRunBatch(t, cfg, WithSimulations(3), WithSeed(6), WithTraceLevel(trace.TraceLevelCycles))

	traces := c.Traces()
	require.Len(t, traces, 3)
	for i, st := range traces {
		require.NotNil(t, st, "trace %d", i)
		assert.Len(t, st.Cycles, 4)
		assert.Equal(t, "men", st.Config.Favored)
	}
}

func TestTraces_NilWhenDisabled(t *testing.T) {
	c, _ := mustRunBatch(t, sim.DefaultSimConfig(sim.Men, 1), WithSimulations(2), WithSeed(6))
	for _, st := range c.Traces() {
		assert.Nil(t, st)
	}
}

func TestAggregate_Errors(t *testing.T) {
	_, err := Aggregate(nil, sim.Men, 0)
	assert.True(t, errors.Is(err, sim.ErrInvalidState), "got %v", err)

	empty := []sim.SimulationResult{{Levels: []sim.LevelState{{Men: 1, Women: 1}, {}}}}
	_, err = Aggregate(empty, sim.Men, 0)
	assert.True(t, errors.Is(err, sim.ErrDegenerateAggregate), "got %v", err)

	mismatched := []sim.SimulationResult{
		{Levels: []sim.LevelState{{Men: 1, Women: 1}}},
		{Levels: []sim.LevelState{{Men: 1, Women: 1}, {Men: 1}}},
	}
	_, err = Aggregate(mismatched, sim.Men, 0)
	assert.True(t, errors.Is(err, sim.ErrDegenerateAggregate), "got %v", err)
}

func TestAggregate_PoolsCountsAndStdDev(t *testing.T) {
	results := []sim.SimulationResult{
		{Levels: []sim.LevelState{{Men: 4, Women: 6}}},
		{Levels: []sim.LevelState{{Men: 6, Women: 4}}},
	}
	agg, err := Aggregate(results, sim.Women, 7)
	require.NoError(t, err)

	assert.Equal(t, []float64{50}, agg.MenPercentByLevel)
	assert.Equal(t, []float64{50}, agg.WomenPercentByLevel)
	assert.InDelta(t, math.Sqrt(200), agg.MenStdDevByLevel[0], 1e-9)
	assert.Equal(t, 7, agg.PromotionBias)
	assert.Equal(t, sim.Women, agg.Favors)
}
