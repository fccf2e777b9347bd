// Package stats implements the non-parametric procedures the analysis
// engine runs per variable: the Friedman test for repeated measures, the
// Nemenyi post-hoc comparison, and descriptive summaries.
//
// Distribution functions come from gonum (chi-squared survival, normal
// density/CDF for the studentized range) and descriptive order statistics
// from go-moremath. The Mann-Whitney U test is not reimplemented here; the
// engine calls go-moremath's MannWhitneyUTest directly.
package stats
