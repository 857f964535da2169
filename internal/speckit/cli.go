package speckit

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
)

// ScaffoldDir is the directory specify init creates in a worktree.
const ScaffoldDir = ".specify"

// InstallHint is shown when the specify binary cannot be run.
const InstallHint = "specify CLI not installed. See https://speckit.org/#quick-start for installation instructions."

// CLI drives the specify binary.
type CLI struct {
	runner Runner
	binary string
	ai     string
	logger *slog.Logger
}

// NewCLI creates a CLI for the given binary and AI agent name.
func NewCLI(runner Runner, binary, ai string, logger *slog.Logger) *CLI {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLI{runner: runner, binary: binary, ai: ai, logger: logger}
}

// ScaffoldPath returns the absolute path of the scaffold directory.
func ScaffoldPath(worktree string) string {
	return filepath.Join(worktree, ScaffoldDir)
}

// IsInstalled reports whether `specify --version` runs successfully.
func (c *CLI) IsInstalled(ctx context.Context) bool {
	if _, err := c.runner.Run(ctx, "", c.binary, "--version"); err != nil {
		c.logger.Debug("specify capability probe failed", "binary", c.binary, "error", err)
		return false
	}
	return true
}

// Check runs `specify check` and returns its output.
func (c *CLI) Check(ctx context.Context) (string, error) {
	return c.runner.Run(ctx, "", c.binary, "check")
}

// ScaffoldExists reports whether the worktree already has a .specify
// directory. Any stat failure counts as absent.
func (c *CLI) ScaffoldExists(worktree string) bool {
	info, err := os.Stat(ScaffoldPath(worktree))
	return err == nil && info.IsDir()
}

// Initialize runs `specify init . --ai <agent> --force` in the worktree.
func (c *CLI) Initialize(ctx context.Context, worktree string) error {
	c.logger.Info("Initializing spec-kit scaffold", "worktree", worktree, "ai", c.ai)
	if _, err := c.runner.Run(ctx, worktree, c.binary, "init", ".", "--ai", c.ai, "--force"); err != nil {
		return err
	}
	return nil
}
