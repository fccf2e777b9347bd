package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/serranolab/clinstat/internal/model"
)

const lineWidth = 70

// TextWriter outputs human-readable text reports.
// This format is designed for terminal display and for the results file
// clinicians archive alongside the study data.
//
// Design decision: Each variable block is written to the destination as soon
// as it is rendered rather than buffering the whole report. A write failure
// halfway through a long study still leaves every completed block on disk.
type TextWriter struct {
	baseWriter

	// decimals is the fractional precision of reported statistics.
	decimals int

	// showSkips controls whether the skipped-variables section is shown.
	showSkips bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithDecimals sets the fractional precision of reported statistics.
func WithDecimals(n int) TextWriterOption {
	return func(w *TextWriter) {
		w.decimals = n
	}
}

// WithSkips configures the writer to list skipped variables at the end.
func WithSkips(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.showSkips = show
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		decimals:   4,
		showSkips:  true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run's results block by block.
func (w *TextWriter) Write(run *model.AnalysisRun) (int, error) {
	var total int

	n, err := w.writeHeader(run)
	total += n
	if err != nil {
		return total, err
	}

	switch run.Kind {
	case model.TestFriedman:
		for _, r := range run.Friedman {
			n, err := w.writeFriedmanBlock(r)
			total += n
			if err != nil {
				return total, err
			}
		}
	case model.TestMannWhitney:
		for _, block := range groupByVariable(run.MannWhitney) {
			n, err := w.writeMannWhitneyBlock(run, block)
			total += n
			if err != nil {
				return total, err
			}
		}
	}

	if w.showSkips && len(run.Skips) > 0 {
		n, err := w.writeSkips(run)
		total += n
		if err != nil {
			return total, err
		}
	}

	n, err = w.flush(strings.Repeat("=", lineWidth) + "\n")
	total += n
	return total, err
}

// flush writes one rendered block straight to the destination.
func (w *TextWriter) flush(block string) (int, error) {
	return w.output.Write([]byte(block))
}

// writeHeader writes the report header with run information.
func (w *TextWriter) writeHeader(run *model.AnalysisRun) (int, error) {
	var sb strings.Builder

	title := "FRIEDMAN TEST RESULTS"
	if run.Kind == model.TestMannWhitney {
		title = "MANN-WHITNEY U TEST RESULTS"
	}

	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n")
	pad := (lineWidth - len(title)) / 2
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n\n")

	for i, path := range run.InputPaths {
		label := "Input:"
		if run.Kind == model.TestMannWhitney {
			label = fmt.Sprintf("%s:", run.GroupNames[i])
		}
		sb.WriteString(fmt.Sprintf("%-12s %s\n", label, path))
	}
	sb.WriteString(fmt.Sprintf("%-12s %s\n", "Date:", run.StartedAt.Format("2006-01-02 15:04:05")))

	tested := len(run.Friedman) + countVariables(run.MannWhitney)
	sb.WriteString(fmt.Sprintf("%-12s %d selected, %d tested, %d skipped\n",
		"Variables:", len(run.Variables), tested, len(run.Variables)-tested))
	sb.WriteString("\n")

	return w.flush(sb.String())
}

// writeFriedmanBlock writes one variable's test result with its post-hoc
// comparison matrix.
func (w *TextWriter) writeFriedmanBlock(r *model.FriedmanResult) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Variable: %s\n", r.Variable))
	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Friedman chi-square: %s  (df = %d, n = %d patients)\n",
		w.num(r.ChiSquare), r.DF, r.Patients))
	sb.WriteString(fmt.Sprintf("  p-value:             %s\n\n", w.num(r.PValue)))

	sb.WriteString("  Nemenyi post-hoc p-values:\n\n")
	w.writeMatrix(&sb, r.Rounds, r.Nemenyi)
	sb.WriteString("\n")

	return w.flush(sb.String())
}

// writeMatrix renders the post-hoc matrix as aligned text. NaN cells are
// printed as NaN: the comparison degenerated for that round pair, and hiding
// the cell would misalign the matrix.
func (w *TextWriter) writeMatrix(sb *strings.Builder, rounds []string, cells [][]float64) {
	width := w.decimals + 3
	for _, r := range rounds {
		if len(r) >= width {
			width = len(r) + 1
		}
	}

	sb.WriteString("    " + strings.Repeat(" ", width))
	for _, r := range rounds {
		sb.WriteString(fmt.Sprintf("%*s", width, r))
	}
	sb.WriteString("\n")

	for i, r := range rounds {
		sb.WriteString(fmt.Sprintf("    %*s", width, r))
		for j := range rounds {
			sb.WriteString(fmt.Sprintf("%*s", width, w.num(cells[i][j])))
		}
		sb.WriteString("\n")
	}
}

// writeMannWhitneyBlock writes one variable's per-round comparisons.
func (w *TextWriter) writeMannWhitneyBlock(run *model.AnalysisRun, results []*model.MannWhitneyResult) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Variable: %s\n", results[0].Variable))
	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n\n")

	nameWidth := max(len(run.GroupNames[0]), len(run.GroupNames[1])) + 1
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("  Round %s:\n", r.Round))
		sb.WriteString(w.summaryLine(run.GroupNames[0], nameWidth, r.GroupA))
		sb.WriteString(w.summaryLine(run.GroupNames[1], nameWidth, r.GroupB))
		sb.WriteString(fmt.Sprintf("    U = %s, p-value = %s\n\n", w.num(r.U), w.num(r.PValue)))
	}

	return w.flush(sb.String())
}

// summaryLine renders one cohort's descriptive statistics.
func (w *TextWriter) summaryLine(name string, width int, s model.GroupSummary) string {
	return fmt.Sprintf("    %-*s n=%d, median=%s, IQR=%s (Q1=%s, Q3=%s)\n",
		width, name+":", s.N, w.num(s.Median), w.num(s.IQR), w.num(s.Q1), w.num(s.Q3))
}

// writeSkips writes the skipped-variables section.
func (w *TextWriter) writeSkips(run *model.AnalysisRun) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n")
	sb.WriteString("SKIPPED\n")
	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n\n")

	for _, s := range run.Skips {
		unit := s.Variable
		if s.Round != "" {
			unit = fmt.Sprintf("%s [round %s]", s.Variable, s.Round)
		}
		sb.WriteString(fmt.Sprintf("  %s: %s", unit, s.Reason))
		if s.Detail != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", s.Detail))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	return w.flush(sb.String())
}

// num formats a statistic at the configured precision. NaN stays NaN.
func (w *TextWriter) num(x float64) string {
	if math.IsNaN(x) {
		return "NaN"
	}
	return strconv.FormatFloat(x, 'f', w.decimals, 64)
}

// groupByVariable splits per-round results into per-variable blocks,
// preserving result order.
func groupByVariable(results []*model.MannWhitneyResult) [][]*model.MannWhitneyResult {
	var order []string
	byVar := make(map[string][]*model.MannWhitneyResult)
	for _, r := range results {
		if _, ok := byVar[r.Variable]; !ok {
			order = append(order, r.Variable)
		}
		byVar[r.Variable] = append(byVar[r.Variable], r)
	}

	out := make([][]*model.MannWhitneyResult, 0, len(order))
	for _, v := range order {
		out = append(out, byVar[v])
	}
	return out
}

// countVariables counts the distinct variables among per-round results.
func countVariables(results []*model.MannWhitneyResult) int {
	seen := make(map[string]bool)
	for _, r := range results {
		seen[r.Variable] = true
	}
	return len(seen)
}
