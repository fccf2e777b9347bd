// Package analysis implements the two statistical engines of clinstat: the
// repeated-measures path (Friedman test with Nemenyi post-hoc comparisons)
// and the two-cohort path (per-round Mann-Whitney U tests with descriptive
// statistics).
//
// Both engines consume a model.AnalysisRun that the loader has already
// populated with datasets and record their results, comparison rows, and
// skips back onto it. A degenerate variable never aborts a run; it becomes a
// model.Skip with a reason the reporters can surface.
package analysis
