// Package main provides the entry point for the clinstat CLI.
//
// clinstat runs non-parametric statistical analyses over clinical-trial
// CSV exports: the Friedman test with Nemenyi post-hoc comparisons for
// repeated measures, and the Mann-Whitney U test for two independent cohorts.
//
// Usage:
//
//	clinstat friedman data.csv -o results.txt
//	clinstat mannwhitney treatment.csv control.csv -o results.txt
//
// See --help for all available options.
package main

// main is the entry point for clinstat.
func main() {
	Execute()
}
