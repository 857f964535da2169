// Package gate makes sure the spec-kit scaffold exists before anything
// inspects or generates workflow documents.
package gate

import (
	"context"
	"fmt"
	"log/slog"
)

// Scaffold is the part of the toolchain the gate needs: a presence check
// and an initializer.
type Scaffold interface {
	ScaffoldExists(worktree string) bool
	Initialize(ctx context.Context, worktree string) error
}

// Result reports whether the worktree is ready for inspection.
type Result struct {
	Initialized bool   `json:"initialized"`
	Message     string `json:"message,omitempty"`
}

// Gate runs the initializer at most once per Ensure call and never when
// the scaffold is already present.
type Gate struct {
	scaffold Scaffold
	logger   *slog.Logger
}

// New creates a Gate over the given scaffold.
func New(scaffold Scaffold, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{scaffold: scaffold, logger: logger}
}

// Ensure returns Initialized=true when the scaffold exists or was just
// created. On initializer failure it returns Initialized=false with the
// cause folded into Message.
func (g *Gate) Ensure(ctx context.Context, worktree string) Result {
	if g.scaffold.ScaffoldExists(worktree) {
		return Result{Initialized: true}
	}

	g.logger.Info("spec-kit scaffold missing, initializing", "worktree", worktree)
	if err := g.scaffold.Initialize(ctx, worktree); err != nil {
		g.logger.Warn("spec-kit initialization failed", "worktree", worktree, "error", err)
		return Result{
			Initialized: false,
			Message:     fmt.Sprintf("Failed to initialize spec-kit: %v", err),
		}
	}
	return Result{Initialized: true}
}
