package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// defaultsCmd prints the default configuration as YAML, suitable as a
// starting point for --config.
var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default configuration as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		if err := writeConfig(cmd.OutOrStdout(), DefaultConfig()); err != nil {
			logrus.Fatalf("Failed to write configuration: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(defaultsCmd)
}
