package dataset

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/serranolab/clinstat/internal/model"
)

// Default column names of clinical exports. The original study files key
// rows by Spanish column headers; both are overridable per dataset.
const (
	DefaultPatientColumn = "paciente"
	DefaultRoundColumn   = "evaluacion"
)

// missingMarkers are the cell contents treated as absent measurements,
// compared case-insensitively after trimming.
var missingMarkers = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
}

// Options selects columns and names for one input file.
type Options struct {
	// Label is a display name for the dataset. Defaults to the file stem.
	Label string

	// PatientColumn and RoundColumn name the key columns.
	PatientColumn string
	RoundColumn   string

	// Variables explicitly selects measured variables by header name.
	// When set it overrides the column range and the default selection.
	Variables []string

	// StartColumn and EndColumn select measured variables by an inclusive
	// zero-based column index range, mirroring the repeated-measures
	// export convention where key columns come first. -1 means unset.
	StartColumn int
	EndColumn   int
}

// DefaultOptions returns loader options with the conventional column names
// and no explicit variable selection.
func DefaultOptions() Options {
	return Options{
		PatientColumn: DefaultPatientColumn,
		RoundColumn:   DefaultRoundColumn,
		StartColumn:   -1,
		EndColumn:     -1,
	}
}

// Load reads one CSV file into an observation table. Encoding is resolved
// by the candidate table in this package; any failure is wrapped in a
// *LoadError and is fatal to the run.
func Load(path string, opts Options) (*model.Dataset, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	text, encodingName, err := decodeText(raw)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	text = strings.TrimPrefix(text, "\ufeff")
	slog.Debug("decoded input file", "path", path, "encoding", encodingName)

	reader := csv.NewReader(strings.NewReader(text))
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if len(records) < 2 {
		return nil, &LoadError{Path: path, Err: ErrEmptyFile}
	}

	header := records[0]
	patientIdx, err := findColumn(header, orDefault(opts.PatientColumn, DefaultPatientColumn))
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	roundIdx, err := findColumn(header, orDefault(opts.RoundColumn, DefaultRoundColumn))
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	varIdx, err := selectVariables(header, patientIdx, roundIdx, opts)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	variables := make([]string, len(varIdx))
	for i, idx := range varIdx {
		variables[i] = header[idx]
	}

	obs := make([]model.Observation, 0, len(records)-1)
	for _, rec := range records[1:] {
		o := model.Observation{
			Patient: strings.TrimSpace(rec[patientIdx]),
			Round:   strings.TrimSpace(rec[roundIdx]),
			Values:  make([]model.Value, len(varIdx)),
		}
		for i, idx := range varIdx {
			o.Values[i] = parseValue(rec[idx])
		}
		obs = append(obs, o)
	}

	label := opts.Label
	if label == "" {
		label = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return model.NewDataset(label, header[patientIdx], header[roundIdx], variables, obs), nil
}

// orDefault returns s unless it is empty.
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// findColumn locates a header column by case-insensitive name.
func findColumn(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrMissingColumn, name)
}

// selectVariables resolves the measured variable columns from the options:
// an explicit name list wins, then an inclusive index range, then every
// column that is not a key column.
func selectVariables(header []string, patientIdx, roundIdx int, opts Options) ([]int, error) {
	if len(opts.Variables) > 0 {
		idx := make([]int, 0, len(opts.Variables))
		for _, name := range opts.Variables {
			i, err := findColumn(header, name)
			if err != nil {
				return nil, err
			}
			idx = append(idx, i)
		}
		return idx, nil
	}

	if opts.StartColumn >= 0 || opts.EndColumn >= 0 {
		start, end := opts.StartColumn, opts.EndColumn
		if start < 0 || end < start || end >= len(header) {
			return nil, fmt.Errorf("%w: [%d, %d] with %d columns", ErrColumnRange, start, end, len(header))
		}
		idx := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			if i == patientIdx || i == roundIdx {
				continue
			}
			idx = append(idx, i)
		}
		if len(idx) == 0 {
			return nil, ErrNoVariables
		}
		return idx, nil
	}

	idx := make([]int, 0, len(header))
	for i := range header {
		if i == patientIdx || i == roundIdx {
			continue
		}
		idx = append(idx, i)
	}
	if len(idx) == 0 {
		return nil, ErrNoVariables
	}
	return idx, nil
}

// parseValue classifies one cell as missing, numeric, or non-numeric text.
func parseValue(raw string) model.Value {
	trimmed := strings.TrimSpace(raw)
	v := model.Value{Raw: trimmed}
	if missingMarkers[strings.ToLower(trimmed)] {
		v.Missing = true
		return v
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		v.Num = f
		v.Numeric = true
	}
	return v
}
