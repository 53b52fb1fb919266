// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// LoadConfig holds settings for the corpus loader.
type LoadConfig struct {
	// Root is the documentation directory that is searched recursively.
	Root string `json:"root" yaml:"root" mapstructure:"path"`

	// IgnoreFiles lists file names that never take part in the comparison.
	IgnoreFiles []string `json:"ignore_files,omitempty" yaml:"ignore_files,omitempty" mapstructure:"ignore-file"`

	// IgnoreExts lists file extensions that never take part in the comparison.
	IgnoreExts []string `json:"ignore_exts,omitempty" yaml:"ignore_exts,omitempty" mapstructure:"ignore-ext"`

	// RequireFiles, when not empty, restricts the comparison to these file names.
	RequireFiles []string `json:"require_files,omitempty" yaml:"require_files,omitempty" mapstructure:"require-file"`

	// RequireExts, when not empty, restricts the comparison to these extensions.
	RequireExts []string `json:"require_exts,omitempty" yaml:"require_exts,omitempty" mapstructure:"require-ext"`

	// SkipLines holds regular expressions. Lines matching any of them are
	// removed from each file before comparing.
	SkipLines []string `json:"skip_lines,omitempty" yaml:"skip_lines,omitempty" mapstructure:"skip-lines"`
}

// CompareConfig holds settings for the pairwise comparison.
type CompareConfig struct {
	// Threshold is the similarity, between 0.0 and 1.0, that a pair must
	// exceed to be reported.
	Threshold float64 `json:"threshold" yaml:"threshold" validate:"gte=0,lte=1"`

	// Fast selects the precise metric: 0 Levenshtein, 1 Jaro, 2 or more
	// reuses the trigram pre-filter score.
	Fast int `json:"fast" yaml:"fast" validate:"gte=0"`

	// PrefilterRatio scales the threshold into the trigram pre-filter
	// cutoff. The default of 0.5 rejects pairs whose trigram similarity is
	// below half the threshold.
	PrefilterRatio float64 `json:"prefilter_ratio" yaml:"prefilter_ratio" validate:"gte=0,lte=1"`

	// Workers is the size of the comparison worker pool. Zero uses one
	// worker per CPU.
	Workers int `json:"workers" yaml:"workers" validate:"gte=0"`

	// Verbosity controls log detail: 0 warnings, 1 info, 2 or more debug.
	Verbosity int `json:"verbosity" yaml:"verbosity" validate:"gte=0"`
}

// DefaultPrefilterRatio is the trigram pre-filter cutoff relative to the
// threshold.
const DefaultPrefilterRatio = 0.5

// OutputConfig selects the result files written after a comparison run.
// Empty paths disable the corresponding format.
type OutputConfig struct {
	CSV  string `json:"csv,omitempty" yaml:"csv,omitempty" mapstructure:"csv"`
	JSON string `json:"json,omitempty" yaml:"json,omitempty" mapstructure:"json"`
	YAML string `json:"yaml,omitempty" yaml:"yaml,omitempty" mapstructure:"yaml"`

	// DB is a SQLite database that accumulates the reports of all runs.
	DB string `json:"db,omitempty" yaml:"db,omitempty" mapstructure:"db"`
}

// IsEmpty reports whether no output format is enabled.
func (c OutputConfig) IsEmpty() bool {
	return c.CSV == "" && c.JSON == "" && c.YAML == "" && c.DB == ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Verbosity maps to the log level: 0 warn, 1 info, 2 or more debug.
	Verbosity int `json:"verbosity" yaml:"verbosity" mapstructure:"verbose"`

	// File, when set, additionally writes the log to a rotated file.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"log-file"`
}
