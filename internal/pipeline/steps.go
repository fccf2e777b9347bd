package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/serranolab/clinstat/internal/analysis"
	"github.com/serranolab/clinstat/internal/config"
	"github.com/serranolab/clinstat/internal/database"
	"github.com/serranolab/clinstat/internal/dataset"
	"github.com/serranolab/clinstat/internal/model"
	"github.com/serranolab/clinstat/internal/plot"
	"github.com/serranolab/clinstat/internal/report"
)

// LoadStep reads the input CSV files into the run's datasets.
// Any load failure is fatal: without a readable observation table there is
// nothing for later steps to do.
type LoadStep struct {
	// cfg supplies column names and variable selection.
	cfg *config.Config

	// logger for structured logging.
	logger *slog.Logger
}

// NewLoadStep creates a loading step.
func NewLoadStep(cfg *config.Config, logger *slog.Logger) *LoadStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadStep{cfg: cfg, logger: logger}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do loads every input file, resolves the group display names, and fixes the
// variable list for the engine.
func (s *LoadStep) Do(_ context.Context, run *model.AnalysisRun) error {
	groupNames := [2]string{s.cfg.Group1Name, s.cfg.Group2Name}

	for i, path := range run.InputPaths {
		opts := s.loadOptions(path)
		if run.Kind == model.TestMannWhitney && i < 2 {
			if opts.Label != "" {
				groupNames[i] = opts.Label
			} else {
				opts.Label = groupNames[i]
			}
		}

		ds, err := dataset.Load(path, opts)
		if err != nil {
			return err
		}
		run.Datasets = append(run.Datasets, ds)

		s.logger.Info("dataset loaded",
			slog.String("path", path),
			slog.Int("observations", len(ds.Observations)),
			slog.Int("variables", len(ds.Variables)),
			slog.Int("rounds", len(ds.Rounds())),
		)
	}

	run.Variables = run.Datasets[0].Variables
	run.GroupNames = groupNames
	return nil
}

// loadOptions merges the CLI flags with any per-study settings from the
// configuration file for one input path. Flags win over the file.
func (s *LoadStep) loadOptions(path string) dataset.Options {
	opts := dataset.DefaultOptions()

	if s.cfg.Studies != nil {
		study := s.cfg.Studies.StudyFor(path)
		if study.PatientColumn != "" {
			opts.PatientColumn = study.PatientColumn
		}
		if study.RoundColumn != "" {
			opts.RoundColumn = study.RoundColumn
		}
		if len(study.Variables) > 0 {
			opts.Variables = study.Variables
		}
		opts.Label = study.GroupName
	}

	if s.cfg.PatientColumn != "" {
		opts.PatientColumn = s.cfg.PatientColumn
	}
	if s.cfg.RoundColumn != "" {
		opts.RoundColumn = s.cfg.RoundColumn
	}
	if len(s.cfg.Variables) > 0 {
		opts.Variables = s.cfg.Variables
	}
	opts.StartColumn = s.cfg.StartColumn
	opts.EndColumn = s.cfg.EndColumn

	return opts
}

// FriedmanStep runs the repeated-measures engine.
type FriedmanStep struct {
	analyzer *analysis.FriedmanAnalyzer
}

// NewFriedmanStep creates the repeated-measures analysis step.
func NewFriedmanStep(logger *slog.Logger) *FriedmanStep {
	return &FriedmanStep{analyzer: analysis.NewFriedmanAnalyzer(logger)}
}

// Name returns the step name.
func (s *FriedmanStep) Name() string {
	return "friedman"
}

// Do executes the repeated-measures analysis.
func (s *FriedmanStep) Do(_ context.Context, run *model.AnalysisRun) error {
	return s.analyzer.Analyze(run)
}

// MannWhitneyStep runs the two-cohort engine.
type MannWhitneyStep struct {
	analyzer *analysis.MannWhitneyAnalyzer
}

// NewMannWhitneyStep creates the two-cohort analysis step.
func NewMannWhitneyStep(logger *slog.Logger) *MannWhitneyStep {
	return &MannWhitneyStep{analyzer: analysis.NewMannWhitneyAnalyzer(logger)}
}

// Name returns the step name.
func (s *MannWhitneyStep) Name() string {
	return "mannwhitney"
}

// Do executes the two-cohort analysis.
func (s *MannWhitneyStep) Do(_ context.Context, run *model.AnalysisRun) error {
	return s.analyzer.Analyze(run)
}

// ReportStep writes the text (or markdown) report and the comparisons CSV.
type ReportStep struct {
	// cfg supplies destinations and formatting.
	cfg *config.Config

	// stdout receives the report when no output path is configured, and
	// the no-comparisons diagnostic.
	stdout io.Writer

	// logger for structured logging.
	logger *slog.Logger
}

// NewReportStep creates a reporting step. Output defaults to os.Stdout.
func NewReportStep(cfg *config.Config, stdout io.Writer, logger *slog.Logger) *ReportStep {
	if stdout == nil {
		stdout = os.Stdout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportStep{cfg: cfg, stdout: stdout, logger: logger}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do writes the report, then the comparisons table.
func (s *ReportStep) Do(_ context.Context, run *model.AnalysisRun) error {
	if err := s.writeReport(run); err != nil {
		return err
	}
	return s.writeComparisons(run)
}

// writeReport renders the main report to the configured destination.
func (s *ReportStep) writeReport(run *model.AnalysisRun) error {
	dest := s.stdout
	if s.cfg.OutputPath != "" {
		f, err := os.Create(s.cfg.OutputPath) //nolint:gosec // User-provided output path is intentional
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close() //nolint:errcheck // Write errors surface from the report writer
		dest = f
	}

	var w report.Writer
	if s.cfg.MarkdownReport {
		w = report.NewMarkdownWriter(dest, s.cfg.Decimals)
	} else {
		w = report.NewTextWriter(dest, report.WithDecimals(s.cfg.Decimals))
	}

	n, err := w.Write(run)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if s.cfg.OutputPath != "" {
		s.logger.Info("report written",
			slog.String("path", s.cfg.OutputPath),
			slog.Int("bytes", n))
	}
	return nil
}

// writeComparisons renders the machine-readable table. A run with zero valid
// comparisons produces no file: an empty table would look like a successful
// analysis to downstream tools.
func (s *ReportStep) writeComparisons(run *model.AnalysisRun) error {
	if s.cfg.ComparisonsPath == "" {
		return nil
	}
	if len(run.Comparisons) == 0 {
		s.logger.Warn("no valid comparisons, comparisons file not written",
			slog.String("path", s.cfg.ComparisonsPath))
		fmt.Fprintln(s.stdout, "No valid comparisons were produced; comparisons file not written.") //nolint:errcheck // Diagnostic only
		return nil
	}

	f, err := os.Create(s.cfg.ComparisonsPath) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return fmt.Errorf("create comparisons file: %w", err)
	}

	_, writeErr := report.NewCSVWriter(f).Write(run)
	closeErr := f.Close()
	if writeErr != nil {
		return fmt.Errorf("write comparisons: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close comparisons file: %w", closeErr)
	}

	s.logger.Info("comparisons written",
		slog.String("path", s.cfg.ComparisonsPath),
		slog.Int("rows", len(run.Comparisons)))
	return nil
}

// PlotStep renders per-variable comparison box plots (two-cohort path only).
type PlotStep struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewPlotStep creates a plotting step.
func NewPlotStep(cfg *config.Config, logger *slog.Logger) *PlotStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlotStep{cfg: cfg, logger: logger}
}

// Name returns the step name.
func (s *PlotStep) Name() string {
	return "plot"
}

// Do renders the plots. Individual variables that fail to render are logged
// inside the renderer and skipped.
func (s *PlotStep) Do(_ context.Context, run *model.AnalysisRun) error {
	dir := s.cfg.PlotsDir
	if dir == "" {
		dir = filepath.Join(filepath.Dir(s.cfg.OutputPath), "plots")
	}

	r := plot.NewRenderer(dir, s.cfg.PlotDPI, s.cfg.PlotFormat, run.GroupNames, s.logger)
	written, err := r.Render(run)
	if err != nil {
		return err
	}
	s.logger.Info("plots rendered",
		slog.String("dir", dir),
		slog.Int("count", len(written)))
	return nil
}

// HistoryStep archives the completed run into the local history database.
type HistoryStep struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewHistoryStep creates an archiving step.
func NewHistoryStep(cfg *config.Config, logger *slog.Logger) *HistoryStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStep{cfg: cfg, logger: logger}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "history"
}

// Do opens the archive, saves the run, and closes it again. The database is
// only touched when the user opted in to history.
func (s *HistoryStep) Do(ctx context.Context, run *model.AnalysisRun) error {
	hdb, err := database.Open(s.cfg.HistoryDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer hdb.Close() //nolint:errcheck // Best-effort close after save

	runID, err := hdb.SaveRun(ctx, run)
	if err != nil {
		return fmt.Errorf("archive run: %w", err)
	}
	s.logger.Info("run archived",
		slog.Int64("run_id", runID),
		slog.String("dir", s.cfg.HistoryDir))
	return nil
}

// DefaultPipeline builds the standard pipeline for one analysis: load, test,
// report, then the optional plot and history steps.
//
// Design decision: We provide a default pipeline because:
// 1. Both subcommands want the same ordering
// 2. Reduces boilerplate in the CLI
// 3. Keeps the optional steps' enablement logic in one place
func DefaultPipeline(kind model.TestKind, cfg *config.Config, stdout io.Writer, logger *slog.Logger, opts ...Option) *Pipeline {
	p := New(append([]Option{WithLogger(logger)}, opts...)...)

	p.AddStep(NewLoadStep(cfg, logger))

	switch kind {
	case model.TestFriedman:
		p.AddStep(NewFriedmanStep(logger))
	case model.TestMannWhitney:
		p.AddStep(NewMannWhitneyStep(logger))
	}

	p.AddStep(NewReportStep(cfg, stdout, logger))

	if cfg.Plots && kind == model.TestMannWhitney {
		p.AddStep(NewPlotStep(cfg, logger))
	}
	if cfg.History {
		p.AddStep(NewHistoryStep(cfg, logger))
	}

	return p
}
