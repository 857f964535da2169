package dispatch

import (
	"log/slog"

	"github.com/HendryAvila/speckit-mcp/internal/journal"
	"github.com/HendryAvila/speckit-mcp/internal/phase"
)

// InspectionObserver is notified after every successful phase inspection.
// It's an optional dependency; the dispatcher works with a nil observer.
type InspectionObserver interface {
	OnInspection(worktree string, in *phase.Inspection)
}

// History answers questions about past inspections.
type History interface {
	Latest(worktree, branch string) (*journal.Entry, error)
	Recent(worktree string, limit int) ([]journal.Entry, error)
}

// JournalBridge records inspections in the journal store and serves them
// back as History.
type JournalBridge struct {
	store  *journal.Store
	logger *slog.Logger
}

// NewJournalBridge creates a bridge over store. Returns nil if store is
// nil, so callers must not assign the result to an interface variable
// without checking.
func NewJournalBridge(store *journal.Store, logger *slog.Logger) *JournalBridge {
	if store == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JournalBridge{store: store, logger: logger}
}

// OnInspection records the inspection. Best-effort: a failed write is
// logged and dropped, since the inspection itself already succeeded.
func (b *JournalBridge) OnInspection(worktree string, in *phase.Inspection) {
	if _, err := b.store.Record(worktree, in); err != nil {
		b.logger.Warn("Journal bridge failed to record inspection", "worktree", worktree, "branch", in.Branch, "error", err)
	}
}

// Latest returns the last recorded inspection of a branch.
func (b *JournalBridge) Latest(worktree, branch string) (*journal.Entry, error) {
	return b.store.Latest(worktree, branch)
}

// Recent returns the newest entries for a worktree.
func (b *JournalBridge) Recent(worktree string, limit int) ([]journal.Entry, error) {
	return b.store.Recent(worktree, limit)
}

// notifyObserver is a nil-safe helper. If obs is nil, this is a no-op.
func notifyObserver(obs InspectionObserver, worktree string, in *phase.Inspection) {
	if obs == nil {
		return
	}
	obs.OnInspection(worktree, in)
}
