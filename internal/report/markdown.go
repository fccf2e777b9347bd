package report

import (
	"io"
	"math"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/serranolab/clinstat/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// decimals is the fractional precision of reported statistics.
	decimals int
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, decimals int) *MarkdownWriter {
	if decimals <= 0 {
		decimals = 4
	}
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		decimals:   decimals,
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(run *model.AnalysisRun) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)

	switch run.Kind {
	case model.TestFriedman:
		w.writeFriedman(md, run)
	case model.TestMannWhitney:
		w.writeMannWhitney(md, run)
	}

	w.writeSkips(md, run)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.AnalysisRun) {
	title := "Friedman Test Report"
	if run.Kind == model.TestMannWhitney {
		title = "Mann-Whitney U Test Report"
	}
	md.H1(title)
	md.PlainText("")

	rows := [][]string{
		{"Date", run.StartedAt.Format("2006-01-02 15:04:05")},
	}
	for i, path := range run.InputPaths {
		label := "Input"
		if run.Kind == model.TestMannWhitney {
			label = run.GroupNames[i]
		}
		rows = append(rows, []string{label, "`" + path + "`"})
	}
	rows = append(rows, []string{"Variables", strconv.Itoa(len(run.Variables))})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFriedman writes the per-variable test results and post-hoc matrices.
func (w *MarkdownWriter) writeFriedman(md *markdown.Markdown, run *model.AnalysisRun) {
	md.H2("Test Results")
	md.PlainText("")

	if len(run.Friedman) == 0 {
		md.PlainText("No variable could be tested.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(run.Friedman))
	for i, r := range run.Friedman {
		rows[i] = []string{
			r.Variable,
			w.num(r.ChiSquare),
			strconv.Itoa(r.DF),
			strconv.Itoa(r.Patients),
			w.num(r.PValue),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Variable", "Chi-Square", "DF", "Patients", "p-value"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, r := range run.Friedman {
		md.H3("Post-hoc: " + r.Variable)
		md.PlainText("")
		w.writeMatrix(md, r)
	}
}

// writeMatrix renders one Nemenyi matrix as a table with round labels on
// both axes.
func (w *MarkdownWriter) writeMatrix(md *markdown.Markdown, r *model.FriedmanResult) {
	header := append([]string{"Round"}, r.Rounds...)
	rows := make([][]string, len(r.Rounds))
	for i, round := range r.Rounds {
		row := []string{"**" + round + "**"}
		for j := range r.Rounds {
			row = append(row, w.num(r.Nemenyi[i][j]))
		}
		rows[i] = row
	}
	md.Table(markdown.TableSet{Header: header, Rows: rows})
	md.PlainText("")
}

// writeMannWhitney writes the per-round comparison table.
func (w *MarkdownWriter) writeMannWhitney(md *markdown.Markdown, run *model.AnalysisRun) {
	md.H2("Comparisons")
	md.PlainText("")

	if len(run.MannWhitney) == 0 {
		md.PlainText("No comparison could be tested.")
		md.PlainText("")
		return
	}

	groupA, groupB := run.GroupNames[0], run.GroupNames[1]
	rows := make([][]string, len(run.MannWhitney))
	for i, r := range run.MannWhitney {
		rows[i] = []string{
			r.Variable,
			r.Round,
			w.summaryCell(r.GroupA),
			w.summaryCell(r.GroupB),
			w.num(r.U),
			w.num(r.PValue),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Variable", "Round", groupA + " median (IQR)", groupB + " median (IQR)", "U", "p-value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// summaryCell renders one cohort's descriptives as "median (IQR), n=N".
func (w *MarkdownWriter) summaryCell(s model.GroupSummary) string {
	return w.num(s.Median) + " (" + w.num(s.IQR) + "), n=" + strconv.Itoa(s.N)
}

// writeSkips writes the skipped-variables section when anything was skipped.
func (w *MarkdownWriter) writeSkips(md *markdown.Markdown, run *model.AnalysisRun) {
	if len(run.Skips) == 0 {
		return
	}

	md.H2("Skipped")
	md.PlainText("")

	rows := make([][]string, len(run.Skips))
	for i, s := range run.Skips {
		rows[i] = []string{s.Variable, s.Round, s.Reason.String(), s.Detail}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Variable", "Round", "Reason", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

// num formats a statistic at the configured precision. NaN stays NaN.
func (w *MarkdownWriter) num(x float64) string {
	if math.IsNaN(x) {
		return "NaN"
	}
	return strconv.FormatFloat(x, 'f', w.decimals, 64)
}
