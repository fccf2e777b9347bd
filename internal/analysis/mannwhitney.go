package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	moremath "github.com/aclements/go-moremath/stats"

	"github.com/serranolab/clinstat/internal/model"
	"github.com/serranolab/clinstat/internal/stats"
)

// MannWhitneyAnalyzer runs the two-cohort analysis: an independent two-sided
// Mann-Whitney U test for every (variable, evaluation round) cell across the
// two loaded datasets, with descriptive statistics for each cohort.
type MannWhitneyAnalyzer struct {
	logger *slog.Logger
}

// NewMannWhitneyAnalyzer creates a two-cohort engine. A nil logger disables
// progress logging.
func NewMannWhitneyAnalyzer(logger *slog.Logger) *MannWhitneyAnalyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MannWhitneyAnalyzer{logger: logger}
}

// Analyze tests every (variable, round) cell and records results, comparison
// rows, and skips on the run.
//
// Unlike the repeated-measures path, each cell stands alone: a missing or
// non-numeric measurement drops that patient from that one cell and the rest
// of the variable still gets tested. Rounds are taken from the union of both
// cohorts so a round observed in only one file is still reported, as a skip.
func (a *MannWhitneyAnalyzer) Analyze(run *model.AnalysisRun) error {
	if len(run.Datasets) != 2 {
		return errors.New("analysis: two-cohort comparison needs exactly two datasets")
	}
	cohortA, cohortB := run.Datasets[0], run.Datasets[1]

	for _, variable := range run.Variables {
		for _, round := range unionRounds(cohortA, cohortB) {
			a.analyzeCell(run, cohortA, cohortB, variable, round)
		}
	}
	return nil
}

// analyzeCell tests one (variable, round) cell. Degenerate cells become skips
// carrying the round label.
func (a *MannWhitneyAnalyzer) analyzeCell(run *model.AnalysisRun, cohortA, cohortB *model.Dataset, variable, round string) {
	xs := cohortA.RoundValues(variable, round)
	ys := cohortB.RoundValues(variable, round)
	if len(xs) < 2 || len(ys) < 2 {
		a.skip(run, variable, round, model.SkipInsufficientData,
			fmt.Sprintf("%d vs %d valid measurements, need at least 2 per cohort", len(xs), len(ys)))
		return
	}

	test, err := moremath.MannWhitneyUTest(xs, ys, moremath.LocationDiffers)
	if err != nil {
		switch {
		case errors.Is(err, moremath.ErrSamplesEqual):
			a.skip(run, variable, round, model.SkipZeroVariance, "all measurements identical across both cohorts")
		case errors.Is(err, moremath.ErrSampleSize):
			a.skip(run, variable, round, model.SkipInsufficientData, err.Error())
		default:
			a.skip(run, variable, round, model.SkipInvalidResult, err.Error())
		}
		return
	}
	if math.IsNaN(test.P) || math.IsNaN(test.U) {
		a.skip(run, variable, round, model.SkipInvalidResult, "test statistic is not a number")
		return
	}

	result := &model.MannWhitneyResult{
		Variable: variable,
		Round:    round,
		GroupA:   summarize(xs),
		GroupB:   summarize(ys),
		U:        test.U,
		PValue:   test.P,
	}
	run.MannWhitney = append(run.MannWhitney, result)
	run.Comparisons = append(run.Comparisons, model.Comparison{
		Variable: variable,
		GroupA:   run.GroupNames[0],
		GroupB:   run.GroupNames[1],
		Round:    round,
		PValue:   result.PValue,
		U:        result.U,
		SummaryA: &result.GroupA,
		SummaryB: &result.GroupB,
	})

	a.logger.Info("mann-whitney test complete",
		slog.String("variable", variable),
		slog.String("round", round),
		slog.Float64("u", result.U),
		slog.Float64("p_value", result.PValue))
}

// summarize computes the descriptive statistics of one cohort at one round.
func summarize(xs []float64) model.GroupSummary {
	q1, median, q3 := stats.Quartiles(xs)
	return model.GroupSummary{
		N:      len(xs),
		Median: median,
		Q1:     q1,
		Q3:     q3,
		IQR:    q3 - q1,
	}
}

// unionRounds merges the sorted round labels of both cohorts, preserving the
// primary cohort's order and appending rounds seen only in the second.
func unionRounds(a, b *model.Dataset) []string {
	rounds := append([]string(nil), a.Rounds()...)
	seen := make(map[string]bool, len(rounds))
	for _, r := range rounds {
		seen[r] = true
	}
	for _, r := range b.Rounds() {
		if !seen[r] {
			seen[r] = true
			rounds = append(rounds, r)
		}
	}
	return rounds
}

func (a *MannWhitneyAnalyzer) skip(run *model.AnalysisRun, variable, round string, reason model.SkipReason, detail string) {
	run.AddSkip(variable, round, reason, detail)
	a.logger.Warn("comparison skipped",
		slog.String("variable", variable),
		slog.String("round", round),
		slog.String("reason", reason.String()),
		slog.String("detail", detail))
}
