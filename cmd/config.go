package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/ladder-sim/ladder-sim/sim"
	"github.com/ladder-sim/ladder-sim/sim/controller"
	"github.com/ladder-sim/ladder-sim/sim/trace"
)

// Config represents the full ladder-sim YAML configuration.
// All keys must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Favors            string `yaml:"favors"`
	PromotionBias     int    `yaml:"promotion_bias"`
	AttritionRate     int    `yaml:"attrition_rate"`
	Iterations        int    `yaml:"iterations"`
	Simulations       int    `yaml:"simulations"`
	Capacities        []int  `yaml:"capacities,flow"`
	HireMenPercent    int    `yaml:"hire_men_percent"`
	Seeding           string `yaml:"seeding"`
	AttritionRounding string `yaml:"attrition_rounding"`
	Seed              int64  `yaml:"seed"`
	Workers           int    `yaml:"workers"` // 0 = one per CPU
	Trace             string `yaml:"trace"`
}

// DefaultConfig returns the published model parameters with no bias.
func DefaultConfig() Config {
	return Config{
		Favors:            string(sim.Men),
		PromotionBias:     0,
		AttritionRate:     sim.DefaultAttritionRate,
		Iterations:        sim.DefaultIterations,
		Simulations:       sim.DefaultNumSimulations,
		Capacities:        sim.DefaultCapacities(),
		HireMenPercent:    sim.DefaultHireMenPercent,
		Seeding:           string(sim.SeedingPromotion),
		AttritionRounding: string(sim.RoundingExpected),
		Seed:              42,
		Trace:             string(trace.TraceLevelNone),
	}
}

// loadConfigFile parses path over the defaults, so omitted keys keep their
// default values. Uses strict field checking: typos must cause errors.
func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// writeConfig encodes cfg as YAML.
func writeConfig(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// addSimFlags registers the simulation parameters on fs, bound to v.
func addSimFlags(fs *pflag.FlagSet, v *Config) {
	d := DefaultConfig()
	fs.StringVar(&v.Favors, "favors", d.Favors, "Gender the promotion bias favors (men, women)")
	fs.IntVar(&v.PromotionBias, "bias", d.PromotionBias, "Promotion bias in percentage points, clamped to [0, 100]")
	fs.IntVar(&v.AttritionRate, "attrition", d.AttritionRate, "Percent of each level replaced per cycle")
	fs.IntVar(&v.Iterations, "iterations", d.Iterations, "Promotion cycles per simulation")
	fs.IntVar(&v.Simulations, "simulations", d.Simulations, "Number of independent simulations to aggregate")
	fs.IntSliceVar(&v.Capacities, "capacities", d.Capacities, "Comma-separated positions per level, entry level first")
	fs.IntVar(&v.HireMenPercent, "hire-men-percent", d.HireMenPercent, "Percent of external entry-level hires who are men")
	fs.StringVar(&v.Seeding, "seeding", d.Seeding, "Initial ladder seeding (promotion, flat)")
	fs.StringVar(&v.AttritionRounding, "attrition-rounding", d.AttritionRounding, "Rounding of fractional attrition (expected, nearest)")
	fs.Int64Var(&v.Seed, "seed", d.Seed, "Master seed for all simulations in the batch")
	fs.IntVar(&v.Workers, "workers", d.Workers, "Concurrent simulations (0 = one per CPU)")
	fs.StringVar(&v.Trace, "trace", d.Trace, "Trace level (none, cycles)")
}

// flagKeys maps each simulation flag to the Config field it overrides.
var flagKeys = map[string]func(dst *Config, src Config){
	"favors":             func(d *Config, s Config) { d.Favors = s.Favors },
	"bias":               func(d *Config, s Config) { d.PromotionBias = s.PromotionBias },
	"attrition":          func(d *Config, s Config) { d.AttritionRate = s.AttritionRate },
	"iterations":         func(d *Config, s Config) { d.Iterations = s.Iterations },
	"simulations":        func(d *Config, s Config) { d.Simulations = s.Simulations },
	"capacities":         func(d *Config, s Config) { d.Capacities = append([]int(nil), s.Capacities...) },
	"hire-men-percent":   func(d *Config, s Config) { d.HireMenPercent = s.HireMenPercent },
	"seeding":            func(d *Config, s Config) { d.Seeding = s.Seeding },
	"attrition-rounding": func(d *Config, s Config) { d.AttritionRounding = s.AttritionRounding },
	"seed":               func(d *Config, s Config) { d.Seed = s.Seed },
	"workers":            func(d *Config, s Config) { d.Workers = s.Workers },
	"trace":              func(d *Config, s Config) { d.Trace = s.Trace },
}

// resolveConfig layers explicitly set flags over the config file (or the
// defaults when path is empty). Flags left at their defaults never override
// file values.
func resolveConfig(path string, flags Config, changed func(name string) bool) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		fileCfg, err := loadConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}
	for name, apply := range flagKeys {
		if changed(name) {
			apply(&cfg, flags)
		}
	}
	return cfg, nil
}

// SimConfig converts the file/flag representation into a validated sim.SimConfig.
func (c Config) SimConfig() (sim.SimConfig, error) {
	favors, err := sim.ParseGender(c.Favors)
	if err != nil {
		return sim.SimConfig{}, err
	}
	cfg := sim.NewSimConfig(favors, c.PromotionBias, c.AttritionRate, c.Iterations, sim.LevelLadder(c.Capacities))
	cfg.HireMenPercent = c.HireMenPercent
	cfg.Seeding = sim.SeedingMode(c.Seeding)
	cfg.AttritionRounding = sim.RoundingMode(c.AttritionRounding)
	if err := cfg.Validate(); err != nil {
		return sim.SimConfig{}, err
	}
	return cfg, nil
}

// ControllerOptions returns the batch options carried by c, logging through log.
func (c Config) ControllerOptions(log logrus.FieldLogger) []controller.Option {
	opts := []controller.Option{
		controller.WithSimulations(c.Simulations),
		controller.WithSeed(c.Seed),
		controller.WithTraceLevel(trace.TraceLevel(c.Trace)),
		controller.WithLogger(log),
	}
	if c.Workers > 0 {
		opts = append(opts, controller.WithWorkers(c.Workers))
	}
	return opts
}

// newController builds a validated Controller for c.
func newController(c Config, log logrus.FieldLogger) (*controller.Controller, error) {
	simCfg, err := c.SimConfig()
	if err != nil {
		return nil, err
	}
	return controller.New(simCfg, c.ControllerOptions(log)...)
}
