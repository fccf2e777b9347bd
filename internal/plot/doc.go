// Package plot renders per-variable comparison box plots for the two-cohort
// analysis. Each variable produces one image: paired box plots per evaluation
// round (one cohort left, one right of each tick), median trend lines, and a
// linear trend overlay per cohort.
//
// Rendering is a boundary concern: a variable that fails to render is logged
// and skipped, and never aborts the analysis that produced the numbers.
package plot
