package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".clinstat"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads study settings from a YAML file. If the file does not
// exist it returns ErrConfigNotFound; callers decide whether that matters
// based on whether the path was explicitly requested.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Studies == nil {
		f.Studies = make(map[string]StudySettings)
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file:
// an explicit path wins, then .clinstat in the current directory, then
// .clinstat in the home directory. Returns "" when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// StudyFor returns the merged settings for a dataset path: file defaults
// overlaid with an entry matching the exact path or its base name.
func (f *File) StudyFor(path string) StudySettings {
	if f == nil {
		return StudySettings{}
	}
	if s, ok := f.Studies[path]; ok {
		return MergeStudySettings(f.Defaults, s)
	}
	if s, ok := f.Studies[filepath.Base(path)]; ok {
		return MergeStudySettings(f.Defaults, s)
	}
	return f.Defaults
}
