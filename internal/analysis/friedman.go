package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/serranolab/clinstat/internal/model"
	"github.com/serranolab/clinstat/internal/stats"
)

// FriedmanAnalyzer runs the repeated-measures analysis: one Friedman test per
// measured variable over the wide patient-by-round matrix, followed by the
// Nemenyi post-hoc pairwise comparison of evaluation rounds.
type FriedmanAnalyzer struct {
	logger *slog.Logger
}

// NewFriedmanAnalyzer creates a repeated-measures engine. A nil logger
// disables progress logging.
func NewFriedmanAnalyzer(logger *slog.Logger) *FriedmanAnalyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FriedmanAnalyzer{logger: logger}
}

// Analyze tests every selected variable of the run's dataset and records
// results, pairwise comparisons, and skips on the run.
//
// A variable is analyzed only when it is fully observed: any missing value,
// any non-numeric value, or any duplicated (patient, round) cell excludes the
// whole variable. The strict policy keeps every reported p-value grounded in
// the complete design; imputation is out of scope.
func (a *FriedmanAnalyzer) Analyze(run *model.AnalysisRun) error {
	if len(run.Datasets) == 0 {
		return errors.New("analysis: no dataset loaded")
	}
	ds := run.Datasets[0]

	for _, variable := range run.Variables {
		a.analyzeVariable(run, ds, variable)
	}
	return nil
}

// analyzeVariable runs one Friedman test. Every degenerate outcome becomes a
// skip on the run; the method never fails the analysis.
func (a *FriedmanAnalyzer) analyzeVariable(run *model.AnalysisRun, ds *model.Dataset, variable string) {
	if ds.HasMissing(variable) {
		a.skip(run, variable, model.SkipMissingValues, "variable has missing values")
		return
	}
	if !ds.Numeric(variable) {
		a.skip(run, variable, model.SkipNonNumeric, "variable has non-numeric values")
		return
	}

	m, err := ds.Pivot(variable)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateObservation) {
			a.skip(run, variable, model.SkipDuplicateObservation, err.Error())
			return
		}
		a.skip(run, variable, model.SkipInvalidResult, err.Error())
		return
	}
	if m.NumPatients() < 2 || m.NumRounds() < 2 {
		a.skip(run, variable, model.SkipInsufficientData,
			fmt.Sprintf("%d complete patients across %d rounds", m.NumPatients(), m.NumRounds()))
		return
	}
	if m.Constant() {
		a.skip(run, variable, model.SkipZeroVariance, "all measurements identical")
		return
	}

	statistic, pValue, err := stats.Friedman(m.Rows)
	if err != nil {
		switch {
		case errors.Is(err, stats.ErrNoVariance):
			a.skip(run, variable, model.SkipZeroVariance, err.Error())
		case errors.Is(err, stats.ErrTooFewPatients), errors.Is(err, stats.ErrTooFewRounds):
			a.skip(run, variable, model.SkipInsufficientData, err.Error())
		default:
			a.skip(run, variable, model.SkipInvalidResult, err.Error())
		}
		return
	}
	if math.IsNaN(statistic) || math.IsNaN(pValue) {
		a.skip(run, variable, model.SkipInvalidResult, "test statistic is not a number")
		return
	}

	result := &model.FriedmanResult{
		Variable:  variable,
		ChiSquare: statistic,
		DF:        m.NumRounds() - 1,
		PValue:    pValue,
		Rounds:    m.Rounds,
		Patients:  m.NumPatients(),
		Nemenyi:   stats.NemenyiFriedman(m.Rows),
	}
	run.Friedman = append(run.Friedman, result)
	run.Comparisons = append(run.Comparisons, nemenyiComparisons(result)...)

	a.logger.Info("friedman test complete",
		slog.String("variable", variable),
		slog.Int("patients", result.Patients),
		slog.Float64("chi_square", result.ChiSquare),
		slog.Float64("p_value", result.PValue))
}

// nemenyiComparisons flattens the upper triangle of the post-hoc matrix into
// comparison rows. A NaN cell means the post-hoc comparison degenerated for
// that round pair; it stays visible in the report matrix but produces no row
// in the machine-readable table.
func nemenyiComparisons(r *model.FriedmanResult) []model.Comparison {
	var out []model.Comparison
	for i := 0; i < len(r.Rounds); i++ {
		for j := i + 1; j < len(r.Rounds); j++ {
			p := r.Nemenyi[i][j]
			if math.IsNaN(p) {
				continue
			}
			out = append(out, model.Comparison{
				Variable: r.Variable,
				GroupA:   r.Rounds[i],
				GroupB:   r.Rounds[j],
				PValue:   p,
			})
		}
	}
	return out
}

func (a *FriedmanAnalyzer) skip(run *model.AnalysisRun, variable string, reason model.SkipReason, detail string) {
	run.AddSkip(variable, "", reason, detail)
	a.logger.Warn("variable skipped",
		slog.String("variable", variable),
		slog.String("reason", reason.String()),
		slog.String("detail", detail))
}
