// Package cli implements the dstream-transformer command line.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/katasec/dstream-transformer/transformer"
)

var rootCmd = &cobra.Command{
	Use:   "dstream-transformer",
	Short: "Decode string encoded CDC values into typed JSON",
	Long: `dstream-transformer reads change messages (one JSON document per line) from stdin,
converts every column value according to its declared database type and writes the
decoded changes to stdout.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(runCmd, describeCmd, typesCmd, schemaCmd)
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		transformer.GetLogger().Error("Command failed", "error", err)
		os.Exit(1)
	}
}
