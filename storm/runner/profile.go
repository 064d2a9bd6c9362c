package runner

import (
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"

	"github.com/byte4ever/prstorm/storm/change"
)

// Profile is an optional YAML file overriding the canned
// pools and artifact destinations of a run. Zero-valued
// fields keep the defaults.
type Profile struct {
	// Titles replaces the commit/PR title pool.
	Titles []string `yaml:"titles"`
	// Bodies replaces the PR body pool.
	Bodies []string `yaml:"bodies"`
	// Weights replaces the change kind weights.
	Weights ProfileWeights `yaml:"weights"`
	// Base overrides the base branch.
	Base string `yaml:"base"`
	// BranchPrefix overrides the branch prefix.
	BranchPrefix string `yaml:"branch_prefix"`
	// DocsDir overrides the markdown note directory.
	DocsDir string `yaml:"docs_dir"`
	// CodeDir overrides the shell stub directory.
	CodeDir string `yaml:"code_dir"`
	// ConfFile overrides the shared config dotfile.
	ConfFile string `yaml:"conf_file"`
	// DocsTemplate, CodeTemplate, and ConfTemplate
	// replace the artifact templates. Same {{VAR}}
	// placeholders as the built-ins.
	DocsTemplate string `yaml:"docs_template"`
	CodeTemplate string `yaml:"code_template"`
	ConfTemplate string `yaml:"conf_template"`
}

// ProfileWeights mirrors change.Weights for YAML
// decoding.
type ProfileWeights struct {
	Docs   int `yaml:"docs"`
	Code   int `yaml:"code"`
	Config int `yaml:"config"`
}

// LoadProfile reads and decodes a YAML run profile.
func LoadProfile(path string) (*Profile, error) {
	const errCtx = "loading run profile"

	data, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return nil, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	var pf Profile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf(
			"%s: parse yaml: %w", errCtx, err,
		)
	}

	return &pf, nil
}

// PickerConfig converts the profile's pool overrides
// into a change.PickerConfig.
func (pf *Profile) PickerConfig() change.PickerConfig {
	return change.PickerConfig{
		Weights: change.Weights{
			Docs:   pf.Weights.Docs,
			Code:   pf.Weights.Code,
			Config: pf.Weights.Config,
		},
		Titles: pf.Titles,
		Bodies: pf.Bodies,
	}
}

// GeneratorConfig converts the profile's destination
// overrides into a change.GeneratorConfig.
func (pf *Profile) GeneratorConfig() change.GeneratorConfig {
	return change.GeneratorConfig{
		DocsDir:      pf.DocsDir,
		CodeDir:      pf.CodeDir,
		ConfFile:     pf.ConfFile,
		DocsTemplate: pf.DocsTemplate,
		CodeTemplate: pf.CodeTemplate,
		ConfTemplate: pf.ConfTemplate,
	}
}
