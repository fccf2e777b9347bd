package config

import (
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/serranolab/clinstat/internal/model"
)

// Default configuration values. Report precision and plot settings follow
// the conventions of the study reports this tool produces.
const (
	// DefaultDecimals is the number of fractional digits for statistics and
	// p-values in the text report. Four digits is the customary precision
	// for reported p-values.
	DefaultDecimals = 4

	// DefaultPlotDPI is the raster resolution for comparison plots.
	// 300 dpi is the usual requirement for print publication.
	DefaultPlotDPI = 300

	// DefaultPlotFormat is the image format for comparison plots.
	DefaultPlotFormat = "png"

	// DefaultGroup1Name and DefaultGroup2Name label the cohorts when no
	// display names are configured.
	DefaultGroup1Name = "Group 1"
	DefaultGroup2Name = "Group 2"

	// AppName is the application name used for XDG directory paths.
	AppName = "clinstat"
)

// plotFormats lists the image formats the renderer supports.
var plotFormats = map[string]bool{
	"png": true, "jpg": true, "jpeg": true,
	"pdf": true, "svg": true, "eps": true,
	"tif": true, "tiff": true,
}

// Config holds all options for one analysis run. It is populated from CLI
// flags (plus the optional .clinstat file) and passed through the
// application by value reference, never as global state.
//
// Design decision: We use a single flat struct shared by both analysis
// paths. Fields that only one path uses (column range, plot settings) are
// simply ignored by the other; the number of options does not justify
// nesting.
type Config struct {
	// InputPaths are the source CSV files: one for the Friedman path, two
	// for the Mann-Whitney path (cohort A then cohort B).
	InputPaths []string

	// PatientColumn and RoundColumn name the key columns of the inputs.
	// Empty means the loader defaults (paciente / evaluacion).
	PatientColumn string
	RoundColumn   string

	// Variables explicitly selects measured variables by name, overriding
	// the column range and the default all-columns selection.
	Variables []string

	// StartColumn and EndColumn select variables by an inclusive zero-based
	// column index range on the Friedman path. -1 means unset.
	StartColumn int
	EndColumn   int

	// OutputPath is the text report destination. Empty writes to stdout.
	OutputPath string

	// ComparisonsPath is the comparisons CSV destination. Empty disables
	// the CSV artifact.
	ComparisonsPath string

	// MarkdownReport switches the report from plain text to Markdown.
	MarkdownReport bool

	// Decimals is the fractional precision of statistics in the report.
	Decimals int

	// Plots enables per-variable comparison box plots (Mann-Whitney only).
	Plots bool

	// PlotsDir is the directory for plot images. Empty defaults to a
	// "plots" directory next to the text report.
	PlotsDir string

	// PlotDPI is the raster image resolution.
	PlotDPI int

	// PlotFormat is the image format (png, jpg, pdf, svg, eps, tif).
	PlotFormat string

	// Group1Name and Group2Name are cohort display names for reports,
	// plots, and the comparisons table.
	Group1Name string
	Group2Name string

	// History enables archiving the run into the local history database.
	History bool

	// HistoryDir is the directory holding the history database. Defaults
	// to the XDG data directory.
	HistoryDir string

	// ConfigFilePath is the explicit path of the .clinstat file, when the
	// user provided one.
	ConfigFilePath string

	// Studies holds per-dataset settings loaded from the config file.
	Studies *File

	// Verbose enables debug-level logging.
	Verbose bool
}

// NewConfig creates a Config with defaults. Zero values are not relied on
// because several defaults are non-zero.
func NewConfig() *Config {
	return &Config{
		StartColumn: -1,
		EndColumn:   -1,
		Decimals:    DefaultDecimals,
		PlotDPI:     DefaultPlotDPI,
		PlotFormat:  DefaultPlotFormat,
		Group1Name:  DefaultGroup1Name,
		Group2Name:  DefaultGroup2Name,
		HistoryDir:  XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for clinstat. The history
// database lives here unless overridden.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for clinstat.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration for the given analysis kind. It returns
// the first problem found; fixing one error often changes the rest.
func (c *Config) Validate(kind model.TestKind) error {
	if len(c.InputPaths) == 0 {
		return ErrNoInput
	}

	switch kind {
	case model.TestFriedman:
		if len(c.InputPaths) != 1 {
			return ErrInputCount
		}
	case model.TestMannWhitney:
		if len(c.InputPaths) != 2 {
			return ErrInputCount
		}
	}

	// The column range is all-or-nothing and must be ordered.
	if (c.StartColumn >= 0) != (c.EndColumn >= 0) {
		return ErrInvalidColumnRange
	}
	if c.StartColumn >= 0 && c.EndColumn < c.StartColumn {
		return ErrInvalidColumnRange
	}

	if c.Decimals < 1 || c.Decimals > 12 {
		return ErrInvalidDecimals
	}

	if c.Plots {
		if c.PlotDPI < 72 {
			return ErrInvalidDPI
		}
		if !plotFormats[c.PlotFormat] {
			return ErrInvalidPlotFormat
		}
	}

	if c.OutputPath != "" && c.OutputPath == c.ComparisonsPath {
		return ErrSameOutputPath
	}

	return nil
}
