// Package pipeline orchestrates an analysis run as an ordered sequence of
// steps: load the inputs, run the statistical engine, write the reports, and
// optionally render plots and archive the run.
//
// Steps execute strictly sequentially over a shared run accumulator. Each
// step either completes, or fails the run with an error recorded on the
// accumulator; per-variable problems are handled inside the engine and never
// surface as step failures.
package pipeline
