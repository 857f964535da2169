// Package dispatch routes speckit actions to the toolchain, the
// initialization gate, and the phase inspector, and shapes every outcome
// into a Response.
//
// Design principles:
//   - Every action starts with the capability probe. When the specify
//     binary is unreachable nothing else runs.
//   - Failures are values. Do never returns a Go error; a failed action is
//     a Response with Success false and a human-readable Error.
//   - No retries. Each external call is made at most once per Do.
//   - The journal is optional. A nil observer or history is a no-op.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/HendryAvila/speckit-mcp/internal/gate"
	"github.com/HendryAvila/speckit-mcp/internal/journal"
	"github.com/HendryAvila/speckit-mcp/internal/phase"
	"github.com/HendryAvila/speckit-mcp/internal/speckit"
)

// Action names a dispatcher operation.
type Action string

const (
	ActionInit    Action = "init"
	ActionCheck   Action = "check"
	ActionStatus  Action = "status"
	ActionPhase   Action = "phase"
	ActionNew     Action = "new"
	ActionTest    Action = "test"
	ActionContext Action = "context"
	ActionHistory Action = "history"
)

// Actions lists every supported action in presentation order.
var Actions = []Action{
	ActionInit, ActionCheck, ActionStatus, ActionPhase,
	ActionNew, ActionTest, ActionContext, ActionHistory,
}

// ActionValues returns the action names as strings, for enum schemas.
func ActionValues() []string {
	out := make([]string, len(Actions))
	for i, a := range Actions {
		out[i] = string(a)
	}
	return out
}

// InitializedMessage is returned by a successful init action.
const InitializedMessage = "spec-kit initialized. Use speckit with action 'phase' to check current workflow phase."

// HistoryLimit is how many journal entries the history action returns.
const HistoryLimit = 20

// Request is one dispatcher invocation.
type Request struct {
	Action   Action `json:"action"`
	Feature  string `json:"feature,omitempty"`
	TestType string `json:"testType,omitempty"`
}

// --- Collaborators ---

// Toolchain is the specify binary as seen by the dispatcher.
type Toolchain interface {
	IsInstalled(ctx context.Context) bool
	Check(ctx context.Context) (string, error)
}

// Initializer ensures the worktree scaffold exists.
type Initializer interface {
	Ensure(ctx context.Context, worktree string) gate.Result
}

// PhaseInspector computes the worktree's current phase.
type PhaseInspector interface {
	Inspect(ctx context.Context, worktree string) (*phase.Inspection, error)
}

// Workspace runs the helper scripts and test commands.
type Workspace interface {
	CreateFeature(ctx context.Context, worktree, name string) (string, error)
	UpdateAgentContext(ctx context.Context, worktree string) (string, error)
	RunTests(ctx context.Context, worktree, testType string) (string, error)
}

// Dispatcher executes Requests against a worktree.
type Dispatcher struct {
	toolchain Toolchain
	gate      Initializer
	inspector PhaseInspector
	workspace Workspace
	logger    *slog.Logger

	observer InspectionObserver // nullable
	history  History            // nullable
}

// New creates a Dispatcher with its required collaborators.
func New(toolchain Toolchain, gate Initializer, inspector PhaseInspector, workspace Workspace, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		toolchain: toolchain,
		gate:      gate,
		inspector: inspector,
		workspace: workspace,
		logger:    logger,
	}
}

// SetObserver sets the optional inspection observer.
func (d *Dispatcher) SetObserver(obs InspectionObserver) {
	d.observer = obs
}

// SetHistory sets the optional inspection history. Without it the status
// response carries no previousPhase and the history action fails.
func (d *Dispatcher) SetHistory(h History) {
	d.history = h
}

// Do runs one request to completion and never returns nil.
func (d *Dispatcher) Do(ctx context.Context, worktree string, req Request) *Response {
	action := Action(strings.TrimSpace(string(req.Action)))
	d.logger.Debug("Dispatching speckit action", "action", action, "worktree", worktree)

	if !d.toolchain.IsInstalled(ctx) {
		return failure(speckit.InstallHint)
	}

	switch action {
	case ActionInit:
		return d.doInit(ctx, worktree)
	case ActionCheck:
		return d.doCheck(ctx)
	case ActionStatus, ActionPhase:
		return d.doPhase(ctx, worktree)
	case ActionNew:
		return d.doNew(ctx, worktree, strings.TrimSpace(req.Feature))
	case ActionTest:
		return d.doTest(ctx, worktree, strings.TrimSpace(req.TestType))
	case ActionContext:
		return d.doContext(ctx, worktree)
	case ActionHistory:
		return d.doHistory(worktree)
	default:
		return failure(fmt.Sprintf("Unknown action: %s", req.Action))
	}
}

// --- Actions ---

func (d *Dispatcher) doInit(ctx context.Context, worktree string) *Response {
	if res := d.gate.Ensure(ctx, worktree); !res.Initialized {
		return failure(res.Message)
	}
	return &Response{Success: true, Message: InitializedMessage}
}

func (d *Dispatcher) doCheck(ctx context.Context) *Response {
	out, err := d.toolchain.Check(ctx)
	if err != nil {
		return failure(fmt.Sprintf("Check failed: %v", err))
	}
	return &Response{Success: true, Output: out}
}

func (d *Dispatcher) doPhase(ctx context.Context, worktree string) *Response {
	if res := d.gate.Ensure(ctx, worktree); !res.Initialized {
		return failure(res.Message)
	}

	in, err := d.inspector.Inspect(ctx, worktree)
	if err != nil {
		d.logger.Warn("Phase inspection failed", "worktree", worktree, "error", err)
		return failure(err.Error())
	}

	previous := d.previousPhase(worktree, in)
	notifyObserver(d.observer, worktree, in)

	return &Response{Success: true, PhaseReport: newPhaseReport(in, previous)}
}

func (d *Dispatcher) doNew(ctx context.Context, worktree, feature string) *Response {
	if feature == "" {
		return failure("Feature name is required for the 'new' action")
	}
	if res := d.gate.Ensure(ctx, worktree); !res.Initialized {
		return failure(res.Message)
	}
	out, err := d.workspace.CreateFeature(ctx, worktree, feature)
	if err != nil {
		return failure(fmt.Sprintf("Feature creation failed: %v", err))
	}
	return &Response{Success: true, Output: out}
}

func (d *Dispatcher) doTest(ctx context.Context, worktree, testType string) *Response {
	if res := d.gate.Ensure(ctx, worktree); !res.Initialized {
		return failure(res.Message)
	}
	out, err := d.workspace.RunTests(ctx, worktree, testType)
	if err != nil {
		if errors.Is(err, speckit.ErrUnknownTestType) {
			return failure(err.Error())
		}
		// Test output is still useful on a failing run.
		return &Response{Success: false, Error: fmt.Sprintf("Tests failed: %v", err), Output: out}
	}
	return &Response{Success: true, Output: out}
}

func (d *Dispatcher) doContext(ctx context.Context, worktree string) *Response {
	if res := d.gate.Ensure(ctx, worktree); !res.Initialized {
		return failure(res.Message)
	}
	out, err := d.workspace.UpdateAgentContext(ctx, worktree)
	if err != nil {
		return failure(fmt.Sprintf("Agent context update failed: %v", err))
	}
	return &Response{Success: true, Output: out}
}

func (d *Dispatcher) doHistory(worktree string) *Response {
	if d.history == nil {
		return failure("Inspection journal is disabled")
	}
	entries, err := d.history.Recent(worktree, HistoryLimit)
	if err != nil {
		return failure(fmt.Sprintf("Reading inspection history failed: %v", err))
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	return &Response{Success: true, HistoryReport: &HistoryReport{History: entries}}
}

// previousPhase reports the phase of the last journaled inspection of the
// same branch when it differs from the current one.
func (d *Dispatcher) previousPhase(worktree string, in *phase.Inspection) phase.Phase {
	if d.history == nil {
		return ""
	}
	last, err := d.history.Latest(worktree, in.Branch)
	if err != nil {
		d.logger.Warn("Reading previous inspection failed", "worktree", worktree, "error", err)
		return ""
	}
	if last == nil || last.Phase == in.Phase {
		return ""
	}
	return last.Phase
}
