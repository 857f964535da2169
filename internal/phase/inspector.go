package phase

import (
	"context"
	"fmt"
)

// BranchResolver answers the worktree's current branch. Implementations
// fall back to a default name instead of failing.
type BranchResolver interface {
	CurrentBranch(ctx context.Context, worktree string) string
}

// FeatureResolver locates the active feature's document directory.
type FeatureResolver interface {
	FeatureDir(ctx context.Context, worktree string) (string, error)
}

// DocumentProber answers whether a document exists in a directory.
// A failed probe is reported as absent.
type DocumentProber interface {
	Exists(dir string, doc Document) bool
}

// Inspection is a full phase report plus the context it was computed in.
type Inspection struct {
	Branch     string `json:"branch"`
	FeatureDir string `json:"feature_dir,omitempty"`
	Report
}

// Inspector runs the resolve → probe → infer sequence for a worktree.
// It holds no state between calls; every Inspect recomputes everything.
type Inspector struct {
	engine   *Engine
	branches BranchResolver
	features FeatureResolver
	prober   DocumentProber
}

// NewInspector creates an Inspector with its collaborators.
func NewInspector(engine *Engine, branches BranchResolver, features FeatureResolver, prober DocumentProber) *Inspector {
	return &Inspector{
		engine:   engine,
		branches: branches,
		features: features,
		prober:   prober,
	}
}

// Inspect computes the current phase of the worktree. The only error it
// returns is a feature-directory resolution failure, wrapped but
// otherwise unchanged.
func (i *Inspector) Inspect(ctx context.Context, worktree string) (*Inspection, error) {
	branch := i.branches.CurrentBranch(ctx, worktree)

	if !IsFeatureBranch(branch) {
		return &Inspection{
			Branch: branch,
			Report: i.engine.Infer(nil, nil),
		}, nil
	}

	dir, err := i.features.FeatureDir(ctx, worktree)
	if err != nil {
		return nil, fmt.Errorf("resolving feature directory for %q: %w", branch, err)
	}

	fc := &FeatureContext{Branch: branch, DocDir: dir}
	return &Inspection{
		Branch:     branch,
		FeatureDir: dir,
		Report:     i.engine.Infer(fc, i.probe(dir)),
	}, nil
}

// probe checks every known document, gating and advisory alike.
func (i *Inspector) probe(dir string) ArtifactSet {
	found := make(ArtifactSet, len(AllDocuments))
	for _, doc := range AllDocuments {
		if i.prober.Exists(dir, doc) {
			found.Add(doc)
		}
	}
	return found
}
