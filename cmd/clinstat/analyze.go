package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/serranolab/clinstat/internal/config"
	"github.com/serranolab/clinstat/internal/model"
	"github.com/serranolab/clinstat/internal/pipeline"
)

// addCommonAnalysisFlags registers the flags shared by both analysis
// subcommands.
func addCommonAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().String("patient-col", "",
		"Name of the patient identifier column (default: paciente)")
	cmd.Flags().String("round-col", "",
		"Name of the evaluation round column (default: evaluacion)")
	cmd.Flags().StringSlice("variables", nil,
		"Explicit list of variables to analyze (default: all non-key columns)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file (default: stdout)")
	cmd.Flags().String("comparisons", "",
		"Write the comparisons CSV to the specified file")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the report in Markdown instead of plain text")
	cmd.Flags().Int("decimals", config.DefaultDecimals,
		"Fractional digits for statistics in the report")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .clinstat in current or home directory)")
	cmd.Flags().Bool("history", false,
		"Archive this run into the local history database")
	cmd.Flags().String("history-dir", "",
		"Directory of the history database (default: XDG data directory)")
}

// buildCommonConfig creates a Config from the flags every analysis
// subcommand shares. Input paths come from positional arguments.
func buildCommonConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.InputPaths = args

	var err error
	if cfg.PatientColumn, err = cmd.Flags().GetString("patient-col"); err != nil {
		return nil, err
	}
	if cfg.RoundColumn, err = cmd.Flags().GetString("round-col"); err != nil {
		return nil, err
	}
	if cfg.Variables, err = cmd.Flags().GetStringSlice("variables"); err != nil {
		return nil, err
	}
	if cfg.OutputPath, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.ComparisonsPath, err = cmd.Flags().GetString("comparisons"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.Decimals, err = cmd.Flags().GetInt("decimals"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}
	if cfg.History, err = cmd.Flags().GetBool("history"); err != nil {
		return nil, err
	}
	historyDir, err := cmd.Flags().GetString("history-dir")
	if err != nil {
		return nil, err
	}
	if historyDir != "" {
		cfg.HistoryDir = historyDir
	}

	if err := loadStudySettings(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadStudySettings resolves the optional .clinstat file. An explicitly
// requested file must exist; the default search may come up empty.
func loadStudySettings(cfg *config.Config) error {
	explicit := cfg.ConfigFilePath != ""
	path := config.FindConfigFile(cfg.ConfigFilePath)

	if path == "" {
		if explicit {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil
	}

	studies, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	cfg.Studies = studies
	return nil
}

// runAnalysis validates the configuration and executes the analysis
// pipeline for the given test kind.
func runAnalysis(cmd *cobra.Command, kind model.TestKind, cfg *config.Config) error {
	if err := cfg.Validate(kind); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	run := model.NewAnalysisRun(kind, cfg.InputPaths...)
	p := pipeline.DefaultPipeline(kind, cfg, cmd.OutOrStdout(), logger)

	if err := p.Execute(ctx, run); err != nil {
		return err
	}

	logger.Info("analysis complete",
		slog.Int("results", len(run.Friedman)+len(run.MannWhitney)),
		slog.Int("comparisons", len(run.Comparisons)),
		slog.Int("skips", len(run.Skips)))
	return nil
}
