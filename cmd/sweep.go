package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ladder-sim/ladder-sim/sim"
)

var (
	sweepFlags  Config
	sweepBiases []int
)

// sweepCmd runs one batch per bias value and tabulates the favored share
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one batch per bias value and compare the favored gender's share by level",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(configPath, sweepFlags, cmd.Flags().Changed)
		if err != nil {
			logrus.Fatalf("Failed to load configuration: %v", err)
		}
		if err := runSweep(cmd.Context(), cmd.OutOrStdout(), cfg, sweepBiases); err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
	},
}

// runSweep runs a batch for every bias in biases, reusing cfg's seed so the
// rows differ only by bias. Output has one column per level.
func runSweep(ctx context.Context, w io.Writer, cfg Config, biases []int) error {
	if len(biases) == 0 {
		return fmt.Errorf("%w: at least one bias value is required", sim.ErrConfiguration)
	}
	favors, err := sim.ParseGender(cfg.Favors)
	if err != nil {
		return err
	}

	header := []string{"Bias"}
	for lvl := range cfg.Capacities {
		header = append(header, fmt.Sprintf("L%d", lvl+1))
	}
	fmt.Fprintf(w, "%% %s by level\n", favors)
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, bias := range biases {
		run := cfg
		run.PromotionBias = bias
		c, err := newController(run, logrus.WithField("bias", bias))
		if err != nil {
			return err
		}
		if err := c.RunSimulations(ctx); err != nil {
			return fmt.Errorf("bias %d: %w", bias, err)
		}
		agg, err := c.FetchResults()
		if err != nil {
			return fmt.Errorf("bias %d: %w", bias, err)
		}
		row := []string{fmt.Sprintf("%d", bias)}
		for _, p := range agg.PercentByLevel(favors) {
			row = append(row, fmt.Sprintf("%.2f", p))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return nil
}

func init() {
	addSimFlags(sweepCmd.Flags(), &sweepFlags)
	sweepCmd.Flags().IntSliceVar(&sweepBiases, "biases", []int{0, 1, 2, 5, 10}, "Comma-separated bias values to compare")
	rootCmd.AddCommand(sweepCmd)
}
