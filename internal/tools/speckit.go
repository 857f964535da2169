// Package tools implements the MCP tool handlers.
//
// Each tool is a struct that receives its dependencies through its
// constructor and exposes Definition and Handle for registration with
// mcp-go.
//
// Design principles:
//   - SRP: each file = one tool
//   - DIP: tools depend on interfaces (Dispatcher), not concretions
//   - Tool failures are tool results (IsError), never Go errors
package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/speckit-mcp/internal/dispatch"
	"github.com/HendryAvila/speckit-mcp/internal/render"
	"github.com/HendryAvila/speckit-mcp/internal/speckit"
)

// Dispatcher runs one speckit action against a worktree.
type Dispatcher interface {
	Do(ctx context.Context, worktree string, req dispatch.Request) *dispatch.Response
}

// SpeckitTool handles the speckit MCP tool. It is a thin adapter: argument
// parsing and worktree discovery here, everything else in the dispatcher.
type SpeckitTool struct {
	dispatcher Dispatcher
	repoPath   string
}

// NewSpeckitTool creates a SpeckitTool. repoPath is where worktree
// discovery starts; empty means the server's working directory.
func NewSpeckitTool(d Dispatcher, repoPath string) *SpeckitTool {
	return &SpeckitTool{dispatcher: d, repoPath: repoPath}
}

// Definition returns the MCP tool definition for registration.
func (t *SpeckitTool) Definition() mcp.Tool {
	return mcp.NewTool("speckit",
		mcp.WithDescription(
			"Run spec-kit workflows for specification-driven development. "+
				"'phase' (or 'status') reports the current workflow phase inferred from the "+
				"feature branch and the documents in its spec directory, plus the /speckit.* "+
				"command to run next. 'init' creates the .specify scaffold, 'check' verifies "+
				"the toolchain, 'new' creates a feature branch, 'test' runs a configured test "+
				"command, 'context' refreshes the agent context file, and 'history' lists "+
				"recent phase inspections.",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("What to do."),
			mcp.Enum(dispatch.ActionValues()...),
		),
		mcp.WithString("feature",
			mcp.Description("Feature name for the 'new' action (e.g. 'user-auth')."),
		),
		mcp.WithString("test_type",
			mcp.Description("Test command to run for the 'test' action, as configured "+
				"under tests: in speckit-mcp.yaml. Defaults to 'all'."),
		),
	)
}

// Handle processes the speckit tool call.
func (t *SpeckitTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action := strings.TrimSpace(req.GetString("action", ""))
	if action == "" {
		return mcp.NewToolResultError("'action' is required: one of " + strings.Join(dispatch.ActionValues(), ", ")), nil
	}

	worktree, err := speckit.FindWorktree(t.repoPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("finding worktree: %v", err)), nil
	}

	resp := t.dispatcher.Do(ctx, worktree, dispatch.Request{
		Action:   dispatch.Action(action),
		Feature:  req.GetString("feature", ""),
		TestType: req.GetString("test_type", ""),
	})

	data, err := render.JSON(resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return mcp.NewToolResultError(string(data)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
