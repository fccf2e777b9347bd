package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than creating
// new error instances in Validate(). Callers can test categories with
// errors.Is() while the messages stay human-readable.
var (
	// ErrNoInput is returned when no input CSV path was provided.
	ErrNoInput = errors.New("no input file specified")

	// ErrInputCount is returned when the number of input files does not
	// match the analysis: one for the repeated-measures path, two for the
	// two-cohort path.
	ErrInputCount = errors.New("wrong number of input files for this analysis")

	// ErrInvalidColumnRange is returned when only one of --start-col and
	// --end-col is set, or when they are out of order.
	ErrInvalidColumnRange = errors.New("invalid column range: set both --start-col and --end-col with start <= end")

	// ErrInvalidDecimals is returned when the report precision is outside
	// the supported range.
	ErrInvalidDecimals = errors.New("invalid decimals: must be between 1 and 12")

	// ErrInvalidDPI is returned when the plot resolution is below 72 dots
	// per inch, the minimum any raster backend renders legibly.
	ErrInvalidDPI = errors.New("invalid plot dpi: must be at least 72")

	// ErrInvalidPlotFormat is returned when the requested image format is
	// not one the renderer supports.
	ErrInvalidPlotFormat = errors.New("invalid plot format: supported formats are png, jpg, pdf, svg, eps, tif")

	// ErrSameOutputPath is returned when the text report and the
	// comparisons CSV point at the same file.
	ErrSameOutputPath = errors.New("report and comparisons outputs must be different files")
)
