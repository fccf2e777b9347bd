package analysis

import (
	"fmt"
	"math"
	"testing"

	"github.com/serranolab/clinstat/internal/model"
)

// wideDataset builds a single-variable dataset from a patient-by-round value
// grid. Cell strings pass through the same parse step as the CSV loader.
func wideDataset(t *testing.T, variable string, rounds []string, grid map[string][]string) *model.Dataset {
	t.Helper()

	var obs []model.Observation
	for patient, cells := range grid {
		if len(cells) != len(rounds) {
			t.Fatalf("patient %q has %d cells, want %d", patient, len(cells), len(rounds))
		}
		for j, cell := range cells {
			obs = append(obs, model.Observation{
				Patient: patient,
				Round:   rounds[j],
				Values:  []model.Value{parseCell(cell)},
			})
		}
	}
	return model.NewDataset("test", "paciente", "evaluacion", []string{variable}, obs)
}

func parseCell(raw string) model.Value {
	v := model.Value{Raw: raw}
	if raw == "" || raw == "NA" {
		v.Missing = true
		return v
	}
	var n float64
	if _, err := fmt.Sscanf(raw, "%g", &n); err == nil {
		v.Num = n
		v.Numeric = true
	}
	return v
}

func TestFriedmanAnalyzerAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("three patients three rounds", func(t *testing.T) {
		t.Parallel()

		ds := wideDataset(t, "pain_score", []string{"1", "2", "3"}, map[string][]string{
			"p1": {"1", "2", "3"},
			"p2": {"1", "2", "2"},
			"p3": {"2", "2", "3"},
		})
		run := model.NewAnalysisRun(model.TestFriedman, "in.csv")
		run.Datasets = []*model.Dataset{ds}
		run.Variables = []string{"pain_score"}

		if err := NewFriedmanAnalyzer(nil).Analyze(run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(run.Friedman) != 1 {
			t.Fatalf("got %d results, want 1", len(run.Friedman))
		}

		r := run.Friedman[0]
		if math.Abs(r.ChiSquare-5.0) > 1e-12 {
			t.Errorf("chi-square = %v, want 5.0", r.ChiSquare)
		}
		if want := math.Exp(-2.5); math.Abs(r.PValue-want) > 1e-12 {
			t.Errorf("p-value = %v, want %v", r.PValue, want)
		}
		if r.DF != 2 {
			t.Errorf("df = %d, want 2", r.DF)
		}
		if r.Patients != 3 {
			t.Errorf("patients = %d, want 3", r.Patients)
		}

		// Three rounds produce three pairwise comparison rows.
		if len(run.Comparisons) != 3 {
			t.Fatalf("got %d comparisons, want 3", len(run.Comparisons))
		}
		for _, c := range run.Comparisons {
			if c.Variable != "pain_score" {
				t.Errorf("comparison variable = %q, want pain_score", c.Variable)
			}
			if c.PValue < 0 || c.PValue > 1 {
				t.Errorf("comparison %s vs %s p-value = %v, want [0,1]", c.GroupA, c.GroupB, c.PValue)
			}
			if c.SummaryA != nil || c.SummaryB != nil {
				t.Error("repeated-measures comparisons must not carry cohort summaries")
			}
		}
		if len(run.Skips) != 0 {
			t.Errorf("unexpected skips: %+v", run.Skips)
		}
	})

	t.Run("missing value skips variable", func(t *testing.T) {
		t.Parallel()

		ds := wideDataset(t, "pain_score", []string{"1", "2"}, map[string][]string{
			"p1": {"1", "2"},
			"p2": {"3", "NA"},
		})
		run := model.NewAnalysisRun(model.TestFriedman, "in.csv")
		run.Datasets = []*model.Dataset{ds}
		run.Variables = []string{"pain_score"}

		if err := NewFriedmanAnalyzer(nil).Analyze(run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertSingleSkip(t, run, model.SkipMissingValues)
	})

	t.Run("non-numeric value skips variable", func(t *testing.T) {
		t.Parallel()

		ds := wideDataset(t, "mobility", []string{"1", "2"}, map[string][]string{
			"p1": {"1", "improved"},
			"p2": {"3", "4"},
		})
		run := model.NewAnalysisRun(model.TestFriedman, "in.csv")
		run.Datasets = []*model.Dataset{ds}
		run.Variables = []string{"mobility"}

		if err := NewFriedmanAnalyzer(nil).Analyze(run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertSingleSkip(t, run, model.SkipNonNumeric)
	})

	t.Run("constant variable skips with zero variance", func(t *testing.T) {
		t.Parallel()

		ds := wideDataset(t, "dose", []string{"1", "2", "3"}, map[string][]string{
			"p1": {"5", "5", "5"},
			"p2": {"5", "5", "5"},
		})
		run := model.NewAnalysisRun(model.TestFriedman, "in.csv")
		run.Datasets = []*model.Dataset{ds}
		run.Variables = []string{"dose"}

		if err := NewFriedmanAnalyzer(nil).Analyze(run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertSingleSkip(t, run, model.SkipZeroVariance)
	})

	t.Run("single patient skips with insufficient data", func(t *testing.T) {
		t.Parallel()

		ds := wideDataset(t, "pain_score", []string{"1", "2"}, map[string][]string{
			"p1": {"1", "2"},
		})
		run := model.NewAnalysisRun(model.TestFriedman, "in.csv")
		run.Datasets = []*model.Dataset{ds}
		run.Variables = []string{"pain_score"}

		if err := NewFriedmanAnalyzer(nil).Analyze(run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertSingleSkip(t, run, model.SkipInsufficientData)
	})

	t.Run("duplicate observation skips variable", func(t *testing.T) {
		t.Parallel()

		obs := []model.Observation{
			{Patient: "p1", Round: "1", Values: []model.Value{parseCell("1")}},
			{Patient: "p1", Round: "1", Values: []model.Value{parseCell("2")}},
			{Patient: "p2", Round: "1", Values: []model.Value{parseCell("3")}},
		}
		ds := model.NewDataset("test", "paciente", "evaluacion", []string{"pain_score"}, obs)
		run := model.NewAnalysisRun(model.TestFriedman, "in.csv")
		run.Datasets = []*model.Dataset{ds}
		run.Variables = []string{"pain_score"}

		if err := NewFriedmanAnalyzer(nil).Analyze(run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertSingleSkip(t, run, model.SkipDuplicateObservation)
	})

	t.Run("one bad variable does not stop the rest", func(t *testing.T) {
		t.Parallel()

		var obs []model.Observation
		good := map[string]map[string]string{
			"p1": {"1": "1", "2": "2", "3": "3"},
			"p2": {"1": "1", "2": "2", "3": "2"},
			"p3": {"1": "2", "2": "2", "3": "3"},
		}
		for patient, byRound := range good {
			for round, cell := range byRound {
				bad := "NA"
				if round == "1" {
					bad = "7"
				}
				obs = append(obs, model.Observation{
					Patient: patient,
					Round:   round,
					Values:  []model.Value{parseCell(bad), parseCell(cell)},
				})
			}
		}
		ds := model.NewDataset("test", "paciente", "evaluacion", []string{"weight", "pain_score"}, obs)
		run := model.NewAnalysisRun(model.TestFriedman, "in.csv")
		run.Datasets = []*model.Dataset{ds}
		run.Variables = []string{"weight", "pain_score"}

		if err := NewFriedmanAnalyzer(nil).Analyze(run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(run.Friedman) != 1 || run.Friedman[0].Variable != "pain_score" {
			t.Fatalf("results = %+v, want only pain_score", run.Friedman)
		}
		if len(run.Skips) != 1 || run.Skips[0].Reason != model.SkipMissingValues {
			t.Errorf("skips = %+v, want one missing-values skip for weight", run.Skips)
		}
	})

	t.Run("no dataset is an error", func(t *testing.T) {
		t.Parallel()

		run := model.NewAnalysisRun(model.TestFriedman, "in.csv")
		if err := NewFriedmanAnalyzer(nil).Analyze(run); err == nil {
			t.Error("expected error for run without datasets")
		}
	})
}

func assertSingleSkip(t *testing.T, run *model.AnalysisRun, want model.SkipReason) {
	t.Helper()

	if len(run.Friedman)+len(run.MannWhitney) != 0 {
		t.Errorf("unexpected results: friedman=%d mannwhitney=%d", len(run.Friedman), len(run.MannWhitney))
	}
	if len(run.Skips) != 1 {
		t.Fatalf("got %d skips, want 1", len(run.Skips))
	}
	if got := run.Skips[0].Reason; got != want {
		t.Errorf("skip reason = %v, want %v", got, want)
	}
}
