package reno

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/spf13/viper"
)

// Config carries every option recognized by the scanner and its ambient
// collaborators (note writer, linter, report formatter). Field names
// follow the distilled option table; yaml tags match the on-disk
// config.yaml / viper keys.
type Config struct {
	NotesDir            string        `yaml:"notesdir" mapstructure:"notesdir"`
	RelNotesDir         string        `yaml:"relnotesdir" mapstructure:"relnotesdir"`
	CollapsePreReleases bool          `yaml:"collapse_pre_releases" mapstructure:"collapse_pre_releases"`
	StopAtBranchBase    bool          `yaml:"stop_at_branch_base" mapstructure:"stop_at_branch_base"`
	Branch              string        `yaml:"branch" mapstructure:"branch"`
	DefaultBranch       string        `yaml:"default_branch" mapstructure:"default_branch"`
	EarliestVersion     string        `yaml:"earliest_version" mapstructure:"earliest_version"`
	ReleaseTagRe        string        `yaml:"release_tag_re" mapstructure:"release_tag_re"`
	PreReleaseTagRe     string        `yaml:"pre_release_tag_re" mapstructure:"pre_release_tag_re"`
	BranchNameRe        string        `yaml:"branch_name_re" mapstructure:"branch_name_re"`
	ClosedBranchTagRe   string        `yaml:"closed_branch_tag_re" mapstructure:"closed_branch_tag_re"`
	BranchNamePrefix    string        `yaml:"branch_name_prefix" mapstructure:"branch_name_prefix"`
	IgnoreNullMerges    bool          `yaml:"ignore_null_merges" mapstructure:"ignore_null_merges"`
	IgnoreNotes         []string      `yaml:"ignore_notes" mapstructure:"ignore_notes"`
	Sections            []SectionSpec `yaml:"sections" mapstructure:"sections"`
	PreludeSectionName  string        `yaml:"prelude_section_name" mapstructure:"prelude_section_name"`
	Encoding            string        `yaml:"encoding" mapstructure:"encoding"`
	Template            string        `yaml:"template" mapstructure:"template"`
}

// SectionSpec is a single (id, title) pair recognized in note YAML.
type SectionSpec struct {
	ID    string `yaml:"id" mapstructure:"id"`
	Title string `yaml:"title" mapstructure:"title"`
}

// DefaultConfig mirrors the distilled original's config defaults
// (notesdir "notes" under a "releasenotes" parent, collapse+stop both on,
// no earliest_version, "master" as the default branch) plus the
// section/regex defaults the distillation left implicit.
var DefaultConfig = Config{
	NotesDir:            "notes",
	RelNotesDir:         "releasenotes",
	CollapsePreReleases: true,
	StopAtBranchBase:    true,
	DefaultBranch:       "master",
	ReleaseTagRe:        `^(?:[0-9]+\.)*[0-9]+(?:\.[0-9a-zA-Z]+)*$`,
	PreReleaseTagRe:     `^(?P<canonical>(?:[0-9]+\.)*[0-9]+)(?P<pre_release>\.[0-9]+(a|b|rc)[0-9]+)$`,
	BranchNameRe:        `^(origin/)?stable/.+$`,
	ClosedBranchTagRe:   `^(.+)-eol$`,
	BranchNamePrefix:    "stable/",
	IgnoreNullMerges:    true,
	PreludeSectionName:  "prelude",
	Encoding:            "utf-8",
	Sections: []SectionSpec{
		{ID: "features", Title: "New Features"},
		{ID: "issues", Title: "Known Issues"},
		{ID: "upgrade", Title: "Upgrade Notes"},
		{ID: "deprecations", Title: "Deprecation Notes"},
		{ID: "critical", Title: "Critical Issues"},
		{ID: "security", Title: "Security Issues"},
		{ID: "fixes", Title: "Bug Fixes"},
		{ID: "other", Title: "Other Notes"},
	},
	Template: defaultNoteTemplate,
}

const defaultNoteTemplate = `---
prelude: >
    Replace this text with content to appear at the top of the section for
    this release.
features:
  - |
    List new features here, or remove this section.
issues:
  - |
    List known issues here, or remove this section.
upgrade:
  - |
    List upgrade notes here, or remove this section.
deprecations:
  - |
    List deprecations notes here, or remove this section.
critical:
  - |
    Add critical notes here, or remove this section.
security:
  - |
    Add security notes here, or remove this section.
fixes:
  - |
    Add normal bug fixes here, or remove this section.
other:
  - |
    Add other notes here, or remove this section.
`

// NotesPath is the notes subdirectory relative to the repository root:
// relnotesdir joined with notesdir.
func (c *Config) NotesPath() string {
	return joinRepoPath(c.RelNotesDir, c.NotesDir)
}

// LoadConfig merges DefaultConfig, an optional on-disk config file at
// <reporoot>/<relnotesdir>/config.yaml, and caller overrides, in that
// order of increasing precedence. The on-disk read goes through viper and
// accepts YAML only; during that read, RENO_-prefixed environment
// variables override keys the file itself sets (other keys, and every
// key when no file exists, ignore the environment). The final merge onto
// the overrides uses mergo so
// that a sparse overrides struct (most fields zero-value) only replaces
// the fields the caller actually set.
func LoadConfig(repoRoot string, overrides *Config) (*Config, error) {
	merged := DefaultConfig

	relNotesDir := merged.RelNotesDir
	if overrides != nil && overrides.RelNotesDir != "" {
		relNotesDir = overrides.RelNotesDir
	}
	cfgPath := joinRepoPath(repoRoot, relNotesDir, "config.yaml")

	if _, err := os.Stat(cfgPath); err == nil {
		v := viper.New()
		v.SetConfigFile(cfgPath)
		v.SetConfigType("yaml")
		v.SetEnvPrefix("reno")
		v.AutomaticEnv()
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", cfgPath, err)
		}
		var fromFile Config
		if err := v.Unmarshal(&fromFile); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", cfgPath, err)
		}
		if err := mergo.Merge(&merged, fromFile, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging %s: %w", cfgPath, err)
		}
	}

	if overrides != nil {
		if err := mergo.Merge(&merged, *overrides, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging overrides: %w", err)
		}
	}

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Validate compiles every configured regex eagerly so misconfiguration is
// reported at load time rather than partway through a scan.
func (c *Config) Validate() error {
	_, err := NewTagClassifier(c)
	return err
}
