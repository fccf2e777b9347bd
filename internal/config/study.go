package config

// StudySettings carries per-dataset overrides from the .clinstat file.
// Everything here is optional; unset fields fall back to the defaults
// section and then to the built-in loader defaults.
type StudySettings struct {
	// PatientColumn names the patient identifier column.
	PatientColumn string `yaml:"patient-column"`

	// RoundColumn names the evaluation round column.
	RoundColumn string `yaml:"round-column"`

	// Variables restricts the analysis to the named measured variables.
	Variables []string `yaml:"variables"`

	// GroupName is the cohort display name used in reports and plots.
	GroupName string `yaml:"group-name"`
}

// File is the parsed .clinstat configuration file.
type File struct {
	// Defaults apply to every dataset unless overridden.
	Defaults StudySettings `yaml:"defaults"`

	// Studies maps a dataset path (as given on the command line) or file
	// base name to its settings.
	Studies map[string]StudySettings `yaml:"studies"`
}

// MergeStudySettings overlays non-zero override fields on the defaults.
func MergeStudySettings(defaults, override StudySettings) StudySettings {
	result := defaults
	if override.PatientColumn != "" {
		result.PatientColumn = override.PatientColumn
	}
	if override.RoundColumn != "" {
		result.RoundColumn = override.RoundColumn
	}
	if len(override.Variables) > 0 {
		result.Variables = override.Variables
	}
	if override.GroupName != "" {
		result.GroupName = override.GroupName
	}
	return result
}
