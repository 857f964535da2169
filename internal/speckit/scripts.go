package speckit

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrResolution marks a failure to resolve the active feature's paths.
	ErrResolution = errors.New("feature path resolution failed")
	// ErrUnknownTestType marks a test action for an unconfigured type.
	ErrUnknownTestType = errors.New("no test command configured")
)

// Keys emitted by check-prerequisites.sh --paths-only.
const (
	KeyRepoRoot    = "REPO_ROOT"
	KeyBranch      = "BRANCH"
	KeyFeatureDir  = "FEATURE_DIR"
	KeyFeatureSpec = "FEATURE_SPEC"
	KeyImplPlan    = "IMPL_PLAN"
	KeyTasks       = "TASKS"
)

// ScriptsDir is where specify installs its bash helpers, relative to the
// worktree.
var ScriptsDir = filepath.Join(ScaffoldDir, "scripts", "bash")

// FeaturePaths is the typed result of path resolution.
type FeaturePaths struct {
	RepoRoot    string            `json:"repo_root,omitempty"`
	Branch      string            `json:"branch,omitempty"`
	FeatureDir  string            `json:"feature_dir"`
	FeatureSpec string            `json:"feature_spec,omitempty"`
	ImplPlan    string            `json:"impl_plan,omitempty"`
	Tasks       string            `json:"tasks,omitempty"`
	Raw         map[string]string `json:"raw,omitempty"`
}

// ParsePaths parses line-oriented "KEY: value" output. Values may
// themselves contain ": ". Lines without a separator are ignored.
// FEATURE_DIR is required.
func ParsePaths(output string) (*FeaturePaths, error) {
	raw := make(map[string]string)
	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		key, value, ok := strings.Cut(line, ": ")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		raw[key] = value
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading script output: %v", ErrResolution, err)
	}

	paths := &FeaturePaths{
		RepoRoot:    raw[KeyRepoRoot],
		Branch:      raw[KeyBranch],
		FeatureDir:  strings.TrimSpace(raw[KeyFeatureDir]),
		FeatureSpec: raw[KeyFeatureSpec],
		ImplPlan:    raw[KeyImplPlan],
		Tasks:       raw[KeyTasks],
		Raw:         raw,
	}
	if paths.FeatureDir == "" {
		return nil, fmt.Errorf("%w: script output has no %s", ErrResolution, KeyFeatureDir)
	}
	return paths, nil
}

// Scripts invokes the helper scripts under .specify/scripts/bash.
type Scripts struct {
	runner Runner
	ai     string
	tests  func(testType string) ([]string, bool)
}

// NewScripts creates a Scripts invoker. tests looks up the argv for a
// test type; it may be nil when no test commands are configured.
func NewScripts(runner Runner, ai string, tests func(testType string) ([]string, bool)) *Scripts {
	return &Scripts{runner: runner, ai: ai, tests: tests}
}

func scriptPath(worktree, name string) string {
	return filepath.Join(worktree, ScriptsDir, name)
}

// ResolvePaths runs check-prerequisites.sh --paths-only for the worktree.
func (s *Scripts) ResolvePaths(ctx context.Context, worktree string) (*FeaturePaths, error) {
	out, err := s.runner.Run(ctx, worktree, "bash", scriptPath(worktree, "check-prerequisites.sh"), "--paths-only")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResolution, err)
	}
	return ParsePaths(out)
}

// FeatureDir returns the active feature's document directory.
func (s *Scripts) FeatureDir(ctx context.Context, worktree string) (string, error) {
	paths, err := s.ResolvePaths(ctx, worktree)
	if err != nil {
		return "", err
	}
	return paths.FeatureDir, nil
}

// CreateFeature runs create-new-feature.sh --json for a feature name.
func (s *Scripts) CreateFeature(ctx context.Context, worktree, name string) (string, error) {
	return s.runner.Run(ctx, worktree, "bash", scriptPath(worktree, "create-new-feature.sh"), "--json", name)
}

// UpdateAgentContext runs update-agent-context.sh for the configured agent.
func (s *Scripts) UpdateAgentContext(ctx context.Context, worktree string) (string, error) {
	return s.runner.Run(ctx, worktree, "bash", scriptPath(worktree, "update-agent-context.sh"), s.ai)
}

// RunTests runs the configured command for testType in the worktree.
func (s *Scripts) RunTests(ctx context.Context, worktree, testType string) (string, error) {
	if s.tests == nil {
		return "", fmt.Errorf("%w for type %q", ErrUnknownTestType, testType)
	}
	argv, ok := s.tests(testType)
	if !ok {
		return "", fmt.Errorf("%w for type %q", ErrUnknownTestType, testType)
	}
	return s.runner.Run(ctx, worktree, argv[0], argv[1:]...)
}
