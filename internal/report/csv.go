package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/serranolab/clinstat/internal/model"
)

// CSVWriter outputs the machine-readable comparisons table.
// This format is designed for downstream tools (spreadsheets, R, pandas),
// so values round-trip exactly rather than at report precision.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// friedmanHeader and mannWhitneyHeader are the column sets of the two paths.
// The repeated-measures table compares evaluation rounds; the two-cohort
// table compares groups at each round and carries full descriptives.
var (
	friedmanHeader = []string{"Variable", "Group1", "Group2", "p_value"}

	mannWhitneyHeader = []string{
		"Variable", "Evaluation", "Group1", "Group2",
		"N1", "Median1", "Q1_1", "Q3_1", "IQR1",
		"N2", "Median2", "Q1_2", "Q3_2", "IQR2",
		"U_Statistic", "p_value",
	}
)

// Write outputs one row per comparison. When the run produced no valid
// comparisons it writes nothing and returns ErrNoComparisons so the caller
// can avoid leaving an empty table file behind.
func (w *CSVWriter) Write(run *model.AnalysisRun) (int, error) {
	if len(run.Comparisons) == 0 {
		return 0, ErrNoComparisons
	}

	counter := &countingWriter{w: w.output}
	cw := csv.NewWriter(counter)

	header := friedmanHeader
	if run.Kind == model.TestMannWhitney {
		header = mannWhitneyHeader
	}
	if err := cw.Write(header); err != nil {
		return counter.n, err
	}

	for _, c := range run.Comparisons {
		var row []string
		switch run.Kind {
		case model.TestMannWhitney:
			row = mannWhitneyRow(c)
		default:
			row = []string{c.Variable, c.GroupA, c.GroupB, formatValue(c.PValue)}
		}
		if err := cw.Write(row); err != nil {
			return counter.n, err
		}
	}

	cw.Flush()
	return counter.n, cw.Error()
}

// mannWhitneyRow renders one two-cohort comparison with its descriptives.
func mannWhitneyRow(c model.Comparison) []string {
	row := []string{c.Variable, c.Round, c.GroupA, c.GroupB}
	for _, s := range []*model.GroupSummary{c.SummaryA, c.SummaryB} {
		if s == nil {
			row = append(row, "", "", "", "", "")
			continue
		}
		row = append(row,
			strconv.Itoa(s.N),
			formatValue(s.Median),
			formatValue(s.Q1),
			formatValue(s.Q3),
			formatValue(s.IQR),
		)
	}
	return append(row, formatValue(c.U), formatValue(c.PValue))
}

// formatValue renders a float so that strconv.ParseFloat recovers it exactly.
func formatValue(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// countingWriter tracks bytes written through the csv encoder.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
