package main

import (
	"github.com/spf13/cobra"

	"github.com/serranolab/clinstat/internal/model"
)

// NewFriedmanCmd creates the friedman command.
func NewFriedmanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friedman <data.csv>",
		Short: "Compare repeated measures across evaluation rounds",
		Long: `Friedman runs a repeated-measures analysis over one cohort.

For every measured variable it pivots the table into a patient-by-round
matrix (complete cases only), runs the tie-corrected Friedman test, and
computes Nemenyi post-hoc p-values for every pair of evaluation rounds.

Variables with missing values, non-numeric data, duplicated observations,
or zero variance are skipped with a warning; the rest of the analysis
continues.

Examples:
  # Analyze all variables of a study export
  clinstat friedman data.csv -o results.txt

  # Analyze columns 2 through 15 and save the comparisons table
  clinstat friedman data.csv --start-col 2 --end-col 15 \
    -o results.txt --comparisons comparisons.csv

  # Explicit variable selection with a Markdown report
  clinstat friedman data.csv --variables dolor,rigidez -m -o results.md

Configuration file (.clinstat) example:
  defaults:
    patient-column: paciente
    round-column: evaluacion
  studies:
    data.csv:
      variables: [dolor, rigidez]`,
		Args: cobra.ExactArgs(1),
		RunE: runFriedmanCmd,
	}

	addCommonAnalysisFlags(cmd)

	// Column range selection, mirroring the positional layout of
	// repeated-measures exports where key columns come first.
	cmd.Flags().Int("start-col", -1,
		"First measured-variable column (zero-based, inclusive)")
	cmd.Flags().Int("end-col", -1,
		"Last measured-variable column (zero-based, inclusive)")

	return cmd
}

// runFriedmanCmd executes the friedman command.
func runFriedmanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCommonConfig(cmd, args)
	if err != nil {
		return err
	}

	if cfg.StartColumn, err = cmd.Flags().GetInt("start-col"); err != nil {
		return err
	}
	if cfg.EndColumn, err = cmd.Flags().GetInt("end-col"); err != nil {
		return err
	}

	return runAnalysis(cmd, model.TestFriedman, cfg)
}
