package model

import "errors"

// ErrDuplicateObservation is returned by Dataset.Pivot when the same
// (patient, round) pair appears more than once. The reshape is ambiguous in
// that case, so the variable is skipped rather than guessed at.
var ErrDuplicateObservation = errors.New("duplicate observation")

// WideMatrix is the repeated-measures layout of a single variable:
// one row per patient, one column per evaluation round. It is built from
// complete cases only, so every cell is a valid measurement.
type WideMatrix struct {
	// Patients labels the rows.
	Patients []string

	// Rounds labels the columns, in sorted round order.
	Rounds []string

	// Rows holds the measurements, len(Patients) x len(Rounds).
	Rows [][]float64
}

// NumPatients returns the number of complete-case rows.
func (m *WideMatrix) NumPatients() int { return len(m.Rows) }

// NumRounds returns the number of evaluation-round columns.
func (m *WideMatrix) NumRounds() int { return len(m.Rounds) }

// Constant reports whether every cell carries the same value. The Friedman
// test is undefined on constant data, so such variables are skipped.
func (m *WideMatrix) Constant() bool {
	if len(m.Rows) == 0 || len(m.Rows[0]) == 0 {
		return true
	}
	first := m.Rows[0][0]
	for _, row := range m.Rows {
		for _, v := range row {
			if v != first {
				return false
			}
		}
	}
	return true
}

// Column returns a copy of the j-th round column.
func (m *WideMatrix) Column(j int) []float64 {
	out := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = row[j]
	}
	return out
}
