package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/serranolab/clinstat/internal/model"
)

func testDataset(label string, shift float64) *model.Dataset {
	var obs []model.Observation
	for _, round := range []string{"1", "2", "3"} {
		for i := 0; i < 4; i++ {
			v := shift + float64(i)
			obs = append(obs, model.Observation{
				Patient: label + "-" + string(rune('a'+i)),
				Round:   round,
				Values:  []model.Value{{Num: v, Numeric: true}},
			})
		}
	}
	return model.NewDataset(label, "paciente", "evaluacion", []string{"pain_score"}, obs)
}

func testRun() *model.AnalysisRun {
	run := model.NewAnalysisRun(model.TestMannWhitney, "a.csv", "b.csv")
	run.Datasets = []*model.Dataset{testDataset("treatment", 5), testDataset("control", 1)}
	run.Variables = []string{"pain_score"}
	run.GroupNames = [2]string{"Treatment", "Control"}
	return run
}

func TestRendererRender(t *testing.T) {
	t.Parallel()

	t.Run("writes one png per variable", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		r := NewRenderer(dir, 150, "png", [2]string{"Treatment", "Control"}, nil)

		written, err := r.Render(testRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(written) != 1 {
			t.Fatalf("got %d images, want 1", len(written))
		}

		want := filepath.Join(dir, "pain_score.png")
		if written[0] != want {
			t.Errorf("path = %q, want %q", written[0], want)
		}
		info, err := os.Stat(want)
		if err != nil {
			t.Fatalf("image not written: %v", err)
		}
		if info.Size() == 0 {
			t.Error("image file is empty")
		}
	})

	t.Run("unplottable variable is skipped not fatal", func(t *testing.T) {
		t.Parallel()

		run := testRun()
		run.Variables = []string{"pain_score", "absent"}

		r := NewRenderer(t.TempDir(), 150, "png", [2]string{"A", "B"}, nil)
		written, err := r.Render(run)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(written) != 1 {
			t.Errorf("got %d images, want 1 (the valid variable)", len(written))
		}
	})

	t.Run("needs two datasets", func(t *testing.T) {
		t.Parallel()

		run := testRun()
		run.Datasets = run.Datasets[:1]

		r := NewRenderer(t.TempDir(), 150, "png", [2]string{"A", "B"}, nil)
		if _, err := r.Render(run); err == nil {
			t.Error("expected error for single dataset")
		}
	})
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "pain_score", "pain_score"},
		{"spaces and accents", "presión arterial", "presi_n_arterial"},
		{"path separators", "a/b\\c", "a_b_c"},
		{"empty", "", "variable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := sanitizeFilename(tt.in); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
