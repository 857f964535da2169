package speckit

import (
	"context"
	"strings"
)

// DefaultBranch is reported whenever the branch cannot be determined.
const DefaultBranch = "main"

// Git reads branch state from a worktree.
type Git struct {
	runner Runner
}

// NewGit creates a Git reader.
func NewGit(runner Runner) *Git {
	return &Git{runner: runner}
}

// CurrentBranch returns the checked-out branch name. Any failure,
// including running outside a repository, yields DefaultBranch.
func (g *Git) CurrentBranch(ctx context.Context, worktree string) string {
	out, err := g.runner.Run(ctx, worktree, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return DefaultBranch
	}
	branch := strings.TrimSpace(out)
	if branch == "" {
		return DefaultBranch
	}
	return branch
}
