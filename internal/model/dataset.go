package model

import (
	"fmt"
	"sort"
	"strconv"
)

// Value is a single parsed cell of a measured variable.
//
// Design decision: We keep the raw text alongside the parsed number rather
// than collapsing to a float64 with NaN because the engine needs to
// distinguish "missing" (empty cell, NA marker) from "non-numeric"
// (garbage text). The two conditions produce different skip reasons.
type Value struct {
	// Raw is the cell text exactly as it appeared in the input file.
	Raw string

	// Num is the parsed numeric value. Only meaningful when Numeric is true.
	Num float64

	// Missing is true when the cell was empty or held a missing-data marker.
	Missing bool

	// Numeric is true when the cell parsed as a number.
	Numeric bool
}

// Observation is one row of the observation table: a single patient at a
// single evaluation round, with one Value per measured variable.
type Observation struct {
	// Patient is the patient identifier.
	Patient string

	// Round is the evaluation round identifier.
	Round string

	// Values holds one entry per dataset variable, in dataset variable order.
	Values []Value
}

// Dataset is the observation table produced by the loader: rows keyed by
// (patient, evaluation round), columns of measured variables.
//
// The (patient, round) pair may appear at most once. The loader does not
// enforce this globally; Pivot detects the violation per variable and the
// engine degrades it to a skip, never a crash.
type Dataset struct {
	// Label is a display name for the dataset (group name or file stem).
	Label string

	// PatientColumn and RoundColumn are the header names the table was
	// keyed by, kept for diagnostics.
	PatientColumn string
	RoundColumn   string

	// Variables lists the measured variable names in input column order.
	Variables []string

	// Observations holds the table rows in input order.
	Observations []Observation

	rounds   []string
	patients []string
	varIndex map[string]int
}

// NewDataset builds a Dataset from parsed observations. Rounds are
// deduplicated and sorted (numerically when every round label parses as a
// number, lexicographically otherwise); patients keep first-seen order.
func NewDataset(label, patientCol, roundCol string, variables []string, obs []Observation) *Dataset {
	d := &Dataset{
		Label:         label,
		PatientColumn: patientCol,
		RoundColumn:   roundCol,
		Variables:     variables,
		Observations:  obs,
		varIndex:      make(map[string]int, len(variables)),
	}
	for i, v := range variables {
		d.varIndex[v] = i
	}

	seenRound := make(map[string]bool)
	seenPatient := make(map[string]bool)
	for _, o := range obs {
		if !seenRound[o.Round] {
			seenRound[o.Round] = true
			d.rounds = append(d.rounds, o.Round)
		}
		if !seenPatient[o.Patient] {
			seenPatient[o.Patient] = true
			d.patients = append(d.patients, o.Patient)
		}
	}
	sortRounds(d.rounds)
	return d
}

// sortRounds orders round labels numerically when all of them parse as
// numbers, falling back to lexicographic order otherwise.
func sortRounds(rounds []string) {
	nums := make([]float64, len(rounds))
	numeric := true
	for i, r := range rounds {
		n, err := strconv.ParseFloat(r, 64)
		if err != nil {
			numeric = false
			break
		}
		nums[i] = n
	}
	if numeric {
		sort.SliceStable(rounds, func(i, j int) bool {
			a, _ := strconv.ParseFloat(rounds[i], 64)
			b, _ := strconv.ParseFloat(rounds[j], 64)
			return a < b
		})
		return
	}
	sort.Strings(rounds)
}

// Rounds returns the unique evaluation rounds in sorted order.
func (d *Dataset) Rounds() []string { return d.rounds }

// Patients returns the unique patient identifiers in first-seen order.
func (d *Dataset) Patients() []string { return d.patients }

// VariableIndex returns the column index of a variable, or -1 when the
// dataset does not carry it.
func (d *Dataset) VariableIndex(name string) int {
	if i, ok := d.varIndex[name]; ok {
		return i
	}
	return -1
}

// HasMissing reports whether any observation is missing a value for the
// given variable. A single missing value disqualifies the variable from the
// repeated-measures analysis (strict policy, no imputation).
func (d *Dataset) HasMissing(variable string) bool {
	idx := d.VariableIndex(variable)
	if idx < 0 {
		return false
	}
	for _, o := range d.Observations {
		if o.Values[idx].Missing {
			return true
		}
	}
	return false
}

// Numeric reports whether every present value of the variable parsed as a
// number. Missing values do not count against the variable here; they are
// handled by HasMissing.
func (d *Dataset) Numeric(variable string) bool {
	idx := d.VariableIndex(variable)
	if idx < 0 {
		return false
	}
	for _, o := range d.Observations {
		v := o.Values[idx]
		if !v.Missing && !v.Numeric {
			return false
		}
	}
	return true
}

// RoundValues returns the numeric values of a variable at one evaluation
// round, dropping missing and non-numeric cells independently. This is the
// extraction step of the two-cohort path, where each (variable, round) cell
// stands alone.
func (d *Dataset) RoundValues(variable, round string) []float64 {
	idx := d.VariableIndex(variable)
	if idx < 0 {
		return nil
	}
	var out []float64
	for _, o := range d.Observations {
		if o.Round != round {
			continue
		}
		v := o.Values[idx]
		if v.Missing || !v.Numeric {
			continue
		}
		out = append(out, v.Num)
	}
	return out
}

// Pivot reshapes one variable into a wide matrix: rows are patients, columns
// are evaluation rounds. Only patients observed at every round are kept
// (complete cases). A duplicated (patient, round) cell is an error because
// the pivot would be ambiguous.
func (d *Dataset) Pivot(variable string) (*WideMatrix, error) {
	idx := d.VariableIndex(variable)
	if idx < 0 {
		return nil, fmt.Errorf("unknown variable %q", variable)
	}

	roundPos := make(map[string]int, len(d.rounds))
	for i, r := range d.rounds {
		roundPos[r] = i
	}

	cells := make(map[string][]*float64, len(d.patients))
	for _, o := range d.Observations {
		row, ok := cells[o.Patient]
		if !ok {
			row = make([]*float64, len(d.rounds))
			cells[o.Patient] = row
		}
		j := roundPos[o.Round]
		if row[j] != nil {
			return nil, fmt.Errorf("%w: patient %q at round %q", ErrDuplicateObservation, o.Patient, o.Round)
		}
		v := o.Values[idx]
		if v.Missing || !v.Numeric {
			continue
		}
		n := v.Num
		row[j] = &n
	}

	m := &WideMatrix{Rounds: d.rounds}
	for _, p := range d.patients {
		row := cells[p]
		complete := true
		for _, c := range row {
			if c == nil {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		vals := make([]float64, len(row))
		for j, c := range row {
			vals[j] = *c
		}
		m.Patients = append(m.Patients, p)
		m.Rows = append(m.Rows, vals)
	}
	return m, nil
}
