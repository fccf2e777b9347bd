package model

import "time"

// TestKind identifies which analysis pipeline a run executes.
type TestKind int

const (
	// TestFriedman is the repeated-measures path: Friedman test with
	// Nemenyi post-hoc comparisons over one dataset.
	TestFriedman TestKind = iota

	// TestMannWhitney is the two-cohort path: Mann-Whitney U tests over two
	// datasets with identical schemas.
	TestMannWhitney
)

// String returns the test name used in reports and the history database.
func (k TestKind) String() string {
	switch k {
	case TestFriedman:
		return "friedman"
	case TestMannWhitney:
		return "mannwhitney"
	default:
		return "unknown"
	}
}

// AnalysisRun is the accumulator threaded through the pipeline. The loader
// fills Datasets, the engine fills results, comparisons and skips, and the
// reporters consume all of it.
//
// Design decision: One explicit accumulator object replaces ad-hoc shared
// state. Each pipeline step mutates only its own section, and a failed step
// records its error here so later steps (and the caller) can inspect it.
type AnalysisRun struct {
	// Kind selects the analysis path.
	Kind TestKind

	// InputPaths are the source CSV files, one for Friedman, two for
	// Mann-Whitney.
	InputPaths []string

	// Datasets are the loaded observation tables, parallel to InputPaths.
	Datasets []*Dataset

	// Variables are the measured variables selected for analysis, in input
	// column order.
	Variables []string

	// GroupNames are the cohort display names on the Mann-Whitney path.
	GroupNames [2]string

	// StartedAt is when the pipeline began executing.
	StartedAt time.Time

	// Friedman collects one result per successfully tested variable.
	Friedman []*FriedmanResult

	// MannWhitney collects one result per successfully tested
	// (variable, round) cell.
	MannWhitney []*MannWhitneyResult

	// Comparisons collects the rows of the machine-readable output table.
	Comparisons []Comparison

	// Skips collects every unit of work that was excluded, with its reason.
	Skips []Skip

	// PerformedSteps names the pipeline steps that ran, in order.
	PerformedSteps []string

	// Err is the first fatal error a step reported, if any.
	Err error
}

// NewAnalysisRun creates a run accumulator for the given test kind.
func NewAnalysisRun(kind TestKind, inputs ...string) *AnalysisRun {
	return &AnalysisRun{
		Kind:       kind,
		InputPaths: inputs,
		StartedAt:  time.Now(),
	}
}

// AddSkip records a skipped unit of work.
func (r *AnalysisRun) AddSkip(variable, round string, reason SkipReason, detail string) {
	r.Skips = append(r.Skips, Skip{Variable: variable, Round: round, Reason: reason, Detail: detail})
}

// Rounds returns the sorted evaluation rounds of the primary dataset, or nil
// before loading.
func (r *AnalysisRun) Rounds() []string {
	if len(r.Datasets) == 0 {
		return nil
	}
	return r.Datasets[0].Rounds()
}
