package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ladder-sim/ladder-sim/sim"
	"github.com/ladder-sim/ladder-sim/sim/controller"
	"github.com/ladder-sim/ladder-sim/sim/trace"
)

var (
	configPath string // Optional YAML config file
	logLevel   string // Log verbosity level
	outputFmt  string // Output format for run: table or json
	runFlags   Config // Simulation flags for run
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "ladder-sim",
	Short: "Simulates how a small promotion bias compounds up an organizational hierarchy",
	Long: `ladder-sim reproduces the "Male-Female Differences" computer simulation
(Martell, Lane & Emrich, 1996). A batch of independent simulations evolves a
ladder of levels through cycles of random attrition and biased promotion, and
the final gender composition is averaged level by level.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(logLevel)
	},
}

// setupLogging applies the --log level to the standard logrus logger.
func setupLogging(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", level)
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
}

// runCmd executes one batch using parameters from the config file and flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a batch of simulations and print the per-level gender composition",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(configPath, runFlags, cmd.Flags().Changed)
		if err != nil {
			logrus.Fatalf("Failed to load configuration: %v", err)
		}
		if err := runBatch(cmd.Context(), cmd.OutOrStdout(), cfg, outputFmt); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
	},
}

// runBatch runs one controller batch for cfg and writes it in the given format.
func runBatch(ctx context.Context, w io.Writer, cfg Config, format string) error {
	if format != "table" && format != "json" {
		return fmt.Errorf("unknown output format %q; valid: table, json", format)
	}
	c, err := newController(cfg, logrus.StandardLogger())
	if err != nil {
		return err
	}

	startTime := time.Now()
	if err := c.RunSimulations(ctx); err != nil {
		return err
	}
	agg, err := c.FetchResults()
	if err != nil {
		return err
	}
	logrus.WithField("seed", c.Seed()).Infof("Batch of %d simulations finished in %v", c.NumSimulations(), time.Since(startTime))

	if trace.TraceLevel(cfg.Trace) == trace.TraceLevelCycles {
		logTraceSummaries(c.Config().Favors, c.Traces())
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		return enc.Encode(agg)
	}
	controller.WriteHeader(w, c.Config(), c.NumSimulations())
	agg.WriteTable(w)
	return nil
}

// logTraceSummaries logs per-simulation cycle statistics at info level.
func logTraceSummaries(favors sim.Gender, traces []*trace.SimulationTrace) {
	for i, st := range traces {
		s := trace.Summarize(st)
		logrus.WithFields(logrus.Fields{
			"engine":   i,
			"cycles":   s.TotalCycles,
			"attrited": s.TotalAttrited,
			"filled":   s.TotalFilled,
		}).Infof("filled %s share by level: %.3f", favors, s.FilledFavoredShare)
	}
}

// Execute runs the CLI root command. An interrupt cancels any batch in flight.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")

	addSimFlags(runCmd.Flags(), &runFlags)
	runCmd.Flags().StringVarP(&outputFmt, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(runCmd)
}
