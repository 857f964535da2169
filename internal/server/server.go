// Package server wires all components and creates the MCP server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the dispatcher, tools, prompts, and resources that
// depend on abstractions. No business logic lives here, only wiring.
package server

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/speckit-mcp/internal/config"
	"github.com/HendryAvila/speckit-mcp/internal/dispatch"
	"github.com/HendryAvila/speckit-mcp/internal/gate"
	"github.com/HendryAvila/speckit-mcp/internal/journal"
	"github.com/HendryAvila/speckit-mcp/internal/phase"
	"github.com/HendryAvila/speckit-mcp/internal/prompts"
	"github.com/HendryAvila/speckit-mcp/internal/resources"
	"github.com/HendryAvila/speckit-mcp/internal/speckit"
	"github.com/HendryAvila/speckit-mcp/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// openJournal is a package-level var to allow test injection.
var openJournal = journal.New

// NewDispatcher builds the dispatcher and its collaborators from cfg.
//
// The returned cleanup function closes the journal database and must be
// called on shutdown. It is always non-nil and safe to call even if the
// journal is disabled or failed to open.
func NewDispatcher(cfg *config.Config, logger *slog.Logger) (*dispatch.Dispatcher, func(), error) {
	if cfg == nil {
		return nil, noop, errors.New("nil configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, noop, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	// --- External collaborators ---

	runner := speckit.NewExecRunner(cfg.Commands.Timeout)
	cli := speckit.NewCLI(runner, cfg.Specify.Binary, cfg.Specify.AI, logger)
	scripts := speckit.NewScripts(runner, cfg.Specify.AI, cfg.TestCommand)

	// --- Core ---

	inspector := phase.NewInspector(
		phase.NewEngine(cfg.Workflow.ConstitutionGating),
		speckit.NewGit(runner),
		scripts,
		speckit.NewFileProber(),
	)
	d := dispatch.New(cli, gate.New(cli, logger), inspector, scripts, logger)

	// --- Inspection journal ---
	//
	// The journal is an independent subsystem: if it fails to open, the
	// dispatcher keeps working without previousPhase and history.

	if !cfg.Journal.Enabled {
		logger.Debug("Inspection journal disabled by configuration")
		return d, noop, nil
	}

	store, err := openJournal(cfg.Journal.Dir)
	if err != nil {
		logger.Warn("Inspection journal disabled", "dir", cfg.Journal.Dir, "error", err)
		return d, noop, nil
	}

	bridge := dispatch.NewJournalBridge(store, logger)
	d.SetObserver(bridge)
	d.SetHistory(bridge)

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close inspection journal", "error", err)
		}
	}
	return d, cleanup, nil
}

// New creates and configures the MCP server with the speckit tool,
// prompts, and resources registered.
//
// The returned cleanup function must be called on shutdown (typically
// via defer). It is always non-nil.
func New(cfg *config.Config, logger *slog.Logger) (*server.MCPServer, func(), error) {
	d, cleanup, err := NewDispatcher(cfg, logger)
	if err != nil {
		return nil, noop, err
	}

	s := server.NewMCPServer(
		"speckit-mcp",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	speckitTool := tools.NewSpeckitTool(d, cfg.Repo.Path)
	s.AddTool(speckitTool.Definition(), speckitTool.Handle)

	// --- Register prompts ---

	startPrompt := prompts.NewStartPrompt()
	s.AddPrompt(startPrompt.Definition(), startPrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(d, cfg.Repo.Path)
	s.AddResource(resourceHandler.PhaseResource(), resourceHandler.HandlePhase)
	s.AddResource(resourceHandler.GuidanceResource(), resourceHandler.HandleGuidance)

	return s, cleanup, nil
}

// noop is the cleanup returned when there is nothing to close.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use speckit-mcp.
func serverInstructions() string {
	return `You have access to speckit-mcp, a workflow tracker for GitHub spec-kit.

## What it does
spec-kit drives a feature through five phases in a fixed order:
constitution → specify → plan → tasks → implement.
Each phase is completed by a /speckit.* slash command that writes one document
into the feature's directory under specs/:

- constitution.md  (/speckit.constitution, gates only when constitution_gating is on)
- spec.md          (/speckit.specify)
- plan.md          (/speckit.plan)
- tasks.md         (/speckit.tasks)

speckit-mcp infers the current phase from the branch name and which of these
documents exist. It never writes the documents itself.

## How to use the speckit tool
- action='phase' (or 'status'): report the current phase, the documents found,
  readyFor, and the command to run next. Call this before suggesting any
  /speckit.* command, and again after one finishes.
- action='init': create the .specify scaffold (done automatically by phase/new).
- action='new' with feature='<name>': create a numbered feature branch (e.g. 004-user-auth).
- action='check': verify the spec-kit toolchain.
- action='test' with optional test_type: run a configured test command.
- action='context': refresh the agent context file from the current plan.
- action='history': list recent phase inspections for this repository.

## Rules
- Feature branches are named NNN-something. On any other branch the phase is
  always 'specify' and you should offer action='new'.
- A missing document stops progress at its phase even if later documents exist.
  If plan.md exists without spec.md, the feature is still in 'specify'.
- Optional commands (/speckit.clarify after specify, /speckit.analyze after tasks)
  never change the phase.
- If the tool reports that the specify CLI is not installed, point the user to
  https://speckit.org/#quick-start and stop.`
}
