package cmd

import (
	"fmt"
	"os"

	"billing/internal/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "billing",
	Short: "Billing CLI - products, customers, invoices and sales reports",
	Long: `Billing CLI manages a small shop's billing data: the product catalog,
customers, invoices with tax, and the reports built from them.

Data lives in a configurable store (a JSON file by default, or sqlite,
postgres or mysql). Every command prints JSON to stdout, or to the file
given with --output.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.AttachRunID(uuid.NewString())
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path (default: stdout)")
	rootCmd.PersistentFlags().Int("timeout", 60, "Command timeout in seconds")
}
