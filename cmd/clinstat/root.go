package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/serranolab/clinstat/internal/log"
)

// NewRootCmd creates the root command for clinstat.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clinstat",
		Short: "Non-parametric statistical analysis for clinical-trial data",
		Long: `clinstat analyzes clinical-trial CSV exports with non-parametric tests.

The friedman subcommand compares repeated measures across evaluation rounds
within one cohort (Friedman test with Nemenyi post-hoc comparisons).
The mannwhitney subcommand compares two independent cohorts per variable and
evaluation round (Mann-Whitney U test with descriptive statistics).

Input files are CSV tables keyed by patient and evaluation-round columns,
with one column per measured variable. Variables that cannot be tested
(missing values, non-numeric data, zero variance) are skipped and reported,
never fatal.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewFriedmanCmd())
	cmd.AddCommand(NewMannWhitneyCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger based on verbosity setting.
// All log output passes through the privacy handler so patient identifiers
// never reach shared log streams.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := log.NewPrivacyHandler(slog.NewTextHandler(os.Stderr, opts))
	return slog.New(handler)
}
