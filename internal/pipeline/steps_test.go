package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/serranolab/clinstat/internal/config"
	"github.com/serranolab/clinstat/internal/dataset"
	"github.com/serranolab/clinstat/internal/model"
)

// writeCSV writes a test input file and returns its path.
func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const friedmanCSV = `paciente,evaluacion,pain_score
p1,1,1
p1,2,2
p1,3,3
p2,1,1
p2,2,2
p2,3,2
p3,1,2
p3,2,2
p3,3,3
`

func TestDefaultPipelineFriedman(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeCSV(t, dir, "study.csv", friedmanCSV)

	cfg := config.NewConfig()
	cfg.InputPaths = []string{input}
	cfg.OutputPath = filepath.Join(dir, "results.txt")
	cfg.ComparisonsPath = filepath.Join(dir, "comparisons.csv")

	var stdout bytes.Buffer
	p := DefaultPipeline(model.TestFriedman, cfg, &stdout, nil)

	run := model.NewAnalysisRun(model.TestFriedman, input)
	if err := p.Execute(context.Background(), run); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if len(run.Friedman) != 1 {
		t.Fatalf("got %d friedman results, want 1", len(run.Friedman))
	}

	reportText, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(reportText), "FRIEDMAN TEST RESULTS") {
		t.Error("report missing header")
	}
	if !strings.Contains(string(reportText), "pain_score") {
		t.Error("report missing variable block")
	}

	f, err := os.Open(cfg.ComparisonsPath)
	if err != nil {
		t.Fatalf("comparisons not written: %v", err)
	}
	defer f.Close() //nolint:errcheck // Test cleanup

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("comparisons not valid csv: %v", err)
	}
	// Three rounds of one variable produce three pairwise rows plus header.
	if len(records) != 4 {
		t.Errorf("got %d csv records, want 4", len(records))
	}
}

func TestDefaultPipelineMannWhitney(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	groupA := writeCSV(t, dir, "treatment.csv", `paciente,evaluacion,pain_score
t1,1,5
t2,1,6
t3,1,7
`)
	groupB := writeCSV(t, dir, "control.csv", `paciente,evaluacion,pain_score
c1,1,1
c2,1,2
c3,1,3
`)

	cfg := config.NewConfig()
	cfg.InputPaths = []string{groupA, groupB}
	cfg.Group1Name = "Treatment"
	cfg.Group2Name = "Control"
	cfg.OutputPath = filepath.Join(dir, "results.txt")

	var stdout bytes.Buffer
	p := DefaultPipeline(model.TestMannWhitney, cfg, &stdout, nil)

	run := model.NewAnalysisRun(model.TestMannWhitney, groupA, groupB)
	if err := p.Execute(context.Background(), run); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if len(run.MannWhitney) != 1 {
		t.Fatalf("got %d results, want 1", len(run.MannWhitney))
	}
	r := run.MannWhitney[0]
	if r.PValue < 0.0999 || r.PValue > 0.1001 {
		t.Errorf("p-value = %v, want 0.1", r.PValue)
	}
	if r.GroupA.Median != 6 || r.GroupB.Median != 2 {
		t.Errorf("medians = %v/%v, want 6/2", r.GroupA.Median, r.GroupB.Median)
	}

	reportText, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(reportText), "MANN-WHITNEY U TEST RESULTS") {
		t.Error("report missing header")
	}
	if !strings.Contains(string(reportText), "Treatment") {
		t.Error("report missing group name")
	}
}

func TestLoadStepFatalOnMissingFile(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	step := NewLoadStep(cfg, nil)

	run := model.NewAnalysisRun(model.TestFriedman, filepath.Join(t.TempDir(), "absent.csv"))
	err := step.Do(context.Background(), run)
	if err == nil {
		t.Fatal("expected error for missing input file")
	}
	var loadErr *dataset.LoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("error = %T, want *dataset.LoadError", err)
	}
}

func TestReportStepNoComparisons(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.ComparisonsPath = filepath.Join(dir, "comparisons.csv")

	var stdout bytes.Buffer
	step := NewReportStep(cfg, &stdout, nil)

	run := model.NewAnalysisRun(model.TestFriedman, "in.csv")
	if err := step.Do(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(cfg.ComparisonsPath); !os.IsNotExist(err) {
		t.Error("comparisons file must not exist when there are no comparisons")
	}
	if !strings.Contains(stdout.String(), "No valid comparisons") {
		t.Error("expected a diagnostic on stdout")
	}
}

func TestHistoryStepArchivesRun(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.HistoryDir = t.TempDir()

	step := NewHistoryStep(cfg, nil)
	run := model.NewAnalysisRun(model.TestFriedman, "in.csv")
	run.Variables = []string{"pain_score"}

	if err := step.Do(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.HistoryDir, "clinstat.db")); err != nil {
		t.Errorf("history database not created: %v", err)
	}
}
