// Package config handles speckit-mcp configuration: which specify binary
// to drive, the workflow gating policy, command timeouts, test commands,
// and where the inspection journal lives.
//
// Configuration is layered. Each YAML layer is decoded on top of the
// previous one, so a layer only overrides the keys it actually sets.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ProjectConfigFile is the per-repository config file name.
	ProjectConfigFile = "speckit-mcp.yaml"
	// UserConfigDir is the user-level config directory under $HOME.
	UserConfigDir = ".config/speckit-mcp"
	// UserConfigFile is the user-level config file name.
	UserConfigFile = "config.yaml"
	// DefaultTestType is used when a test action names no type.
	DefaultTestType = "all"
)

// Config is the complete speckit-mcp configuration.
type Config struct {
	Repo     RepoConfig          `yaml:"repo"`
	Specify  SpecifyConfig       `yaml:"specify"`
	Workflow WorkflowConfig      `yaml:"workflow"`
	Commands CommandsConfig      `yaml:"commands"`
	Tests    map[string][]string `yaml:"tests"`
	Journal  JournalConfig       `yaml:"journal"`
}

// RepoConfig locates the worktree being tracked.
type RepoConfig struct {
	// Path is the worktree root (auto-detected from git if empty).
	Path string `yaml:"path"`
}

// SpecifyConfig configures the external specify toolchain.
type SpecifyConfig struct {
	// Binary is the specify executable name or path.
	Binary string `yaml:"binary"`
	// AI is the agent passed to `specify init --ai` and to the
	// update-agent-context script.
	AI string `yaml:"ai"`
}

// WorkflowConfig selects the phase gating policy.
type WorkflowConfig struct {
	// ConstitutionGating makes constitution.md the first gating document.
	// Off by default: specify keeps the constitution under
	// .specify/memory, not in the feature directory.
	ConstitutionGating bool `yaml:"constitution_gating"`
}

// CommandsConfig bounds every external process call.
type CommandsConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// JournalConfig configures the sqlite inspection history.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// DefaultConfig returns a Config with the defaults every layer starts from.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Specify: SpecifyConfig{
			Binary: "specify",
			AI:     "opencode",
		},
		Workflow: WorkflowConfig{
			ConstitutionGating: false,
		},
		Commands: CommandsConfig{
			Timeout: 60 * time.Second,
		},
		Tests: map[string][]string{},
		Journal: JournalConfig{
			Enabled: true,
			Dir:     filepath.Join(home, ".speckit-mcp"),
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Specify.Binary == "" {
		errs = append(errs, errors.New("specify.binary is required"))
	}
	if c.Specify.AI == "" {
		errs = append(errs, errors.New("specify.ai is required"))
	}
	if c.Commands.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("commands.timeout must be positive, got %s", c.Commands.Timeout))
	}
	for name, argv := range c.Tests {
		if len(argv) == 0 || argv[0] == "" {
			errs = append(errs, fmt.Errorf("tests.%s must name a command", name))
		}
	}
	if c.Journal.Enabled && c.Journal.Dir == "" {
		errs = append(errs, errors.New("journal.dir is required when the journal is enabled"))
	}
	return errors.Join(errs...)
}

// TestCommand returns the argv configured for a test type. An empty
// type selects DefaultTestType.
func (c *Config) TestCommand(testType string) ([]string, bool) {
	if testType == "" {
		testType = DefaultTestType
	}
	argv, ok := c.Tests[testType]
	if !ok || len(argv) == 0 {
		return nil, false
	}
	out := make([]string, len(argv))
	copy(out, argv)
	return out, true
}

// ApplyFile decodes a YAML file on top of the current values.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
