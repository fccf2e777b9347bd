package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/serranolab/clinstat/internal/config"
	"github.com/serranolab/clinstat/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived analysis runs",
		Long: `History lists runs archived with the --history flag, newest first.

Each line shows the run id, test kind, input files, and the counts of
variables, results, and skips. Runs are stored in a local SQLite database
under the XDG data directory unless --history-dir points elsewhere.`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().String("history-dir", "",
		"Directory of the history database (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	dir, err := cmd.Flags().GetString("history-dir")
	if err != nil {
		return err
	}
	if dir == "" {
		dir = config.XDGDataDir()
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	hdb, err := database.Open(dir, opts)
	if err != nil {
		return fmt.Errorf("no run history found (archive runs with --history): %w", err)
	}
	defer hdb.Close() //nolint:errcheck // Read-only cleanup

	records, err := hdb.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No archived runs.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTEST\tINPUTS\tVARIABLES\tRESULTS\tSKIPS")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\n",
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04"),
			r.Kind,
			strings.Join(r.Inputs, ", "),
			r.Variables,
			r.Results,
			r.Skips,
		)
	}
	return w.Flush()
}
