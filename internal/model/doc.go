// Package model defines the data structures shared across the analysis
// pipeline: observation datasets, wide matrices, per-variable outcomes,
// comparison records, and the run accumulator.
//
// All entities in this package are transient. They are computed per run and
// never persisted except through the report writers (and, when the user opts
// in, the run-history database).
package model
