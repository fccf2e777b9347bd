// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - TextWriter: Human-readable text output for terminal display or files
//   - CSVWriter: Machine-readable comparisons table for downstream tools
//   - MarkdownWriter: Shareable document format
//
// Design decision: We separate report writing from result data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
package report
