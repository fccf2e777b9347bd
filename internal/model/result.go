package model

// SkipReason classifies why a unit of work (a variable, or a variable at one
// evaluation round) was excluded from analysis.
//
// Design decision: Skips are first-class values rather than caught errors.
// The engine returns them on the run accumulator so that the two outcomes
// ("processed" vs "skipped: <reason>") are directly testable, and so that a
// degenerate variable can never abort the rest of the run.
type SkipReason int

const (
	// SkipMissingValues marks a variable with at least one missing value.
	// The repeated-measures path imputes nothing; the variable is excluded.
	SkipMissingValues SkipReason = iota

	// SkipNonNumeric marks a variable with non-numeric measurements.
	SkipNonNumeric

	// SkipZeroVariance marks a variable whose values are all identical.
	// Rank tests are undefined without variability.
	SkipZeroVariance

	// SkipInsufficientData marks a unit with too few valid observations,
	// e.g. fewer than two patients per cohort at a round, or fewer than two
	// complete-case patients in the wide matrix.
	SkipInsufficientData

	// SkipInvalidResult marks a unit whose test statistic or p-value came
	// back NaN or otherwise unusable.
	SkipInvalidResult

	// SkipDuplicateObservation marks a variable whose pivot found the same
	// (patient, round) pair twice.
	SkipDuplicateObservation
)

// String returns a human-readable reason for warning logs and reports.
func (r SkipReason) String() string {
	switch r {
	case SkipMissingValues:
		return "missing values"
	case SkipNonNumeric:
		return "non-numeric data"
	case SkipZeroVariance:
		return "zero variance"
	case SkipInsufficientData:
		return "insufficient data"
	case SkipInvalidResult:
		return "invalid test result"
	case SkipDuplicateObservation:
		return "duplicate observation"
	default:
		return "unknown"
	}
}

// Skip records one skipped unit of work. Round is empty on the
// repeated-measures path, where whole variables are skipped.
type Skip struct {
	Variable string
	Round    string
	Reason   SkipReason
	Detail   string
}

// FriedmanResult is the outcome of one Friedman test with Nemenyi post-hoc
// comparisons for a single variable.
type FriedmanResult struct {
	// Variable is the measured variable the test ran on.
	Variable string

	// ChiSquare is the tie-corrected Friedman chi-square statistic.
	ChiSquare float64

	// DF is the degrees of freedom, rounds-1.
	DF int

	// PValue is the chi-square survival probability of the statistic.
	PValue float64

	// Rounds labels the columns of the Nemenyi matrix.
	Rounds []string

	// Patients is the number of complete-case patients tested.
	Patients int

	// Nemenyi is the full pairwise post-hoc p-value matrix, symmetric with
	// a unit diagonal. Cells may be NaN when the post-hoc comparison
	// degenerates; such cells are rendered as NaN in the text report and
	// suppressed from the comparisons table.
	Nemenyi [][]float64
}

// GroupSummary holds the descriptive statistics of one cohort at one
// evaluation round. IQR always equals Q3 - Q1.
type GroupSummary struct {
	N      int
	Median float64
	Q1     float64
	Q3     float64
	IQR    float64
}

// MannWhitneyResult is the outcome of one two-sided Mann-Whitney U test
// comparing two independent cohorts at a single evaluation round.
type MannWhitneyResult struct {
	Variable string
	Round    string
	GroupA   GroupSummary
	GroupB   GroupSummary

	// U is the Mann-Whitney U statistic.
	U float64

	// PValue is the two-sided p-value.
	PValue float64
}

// Comparison is one row of the machine-readable comparisons table.
//
// On the Friedman path GroupA/GroupB are evaluation-round labels and the
// descriptive fields are nil. On the Mann-Whitney path GroupA/GroupB are the
// cohort display names, Round identifies the evaluation round, and both
// summaries are present.
type Comparison struct {
	Variable string
	GroupA   string
	GroupB   string
	Round    string
	PValue   float64

	U        float64
	SummaryA *GroupSummary
	SummaryB *GroupSummary
}
