// Package resources implements MCP resource handlers for the spec-kit
// workflow.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (speckit://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/speckit-mcp/internal/dispatch"
	"github.com/HendryAvila/speckit-mcp/internal/phase"
	"github.com/HendryAvila/speckit-mcp/internal/speckit"
)

const (
	PhaseURI    = "speckit://workflow/phase"
	GuidanceURI = "speckit://workflow/guidance"
)

// Dispatcher runs one speckit action against a worktree.
type Dispatcher interface {
	Do(ctx context.Context, worktree string, req dispatch.Request) *dispatch.Response
}

// Handler manages speckit resource endpoints.
type Handler struct {
	dispatcher Dispatcher
	repoPath   string
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(d Dispatcher, repoPath string) *Handler {
	return &Handler{dispatcher: d, repoPath: repoPath}
}

// PhaseResource returns the MCP resource definition for the live phase.
func (h *Handler) PhaseResource() mcp.Resource {
	return mcp.NewResource(
		PhaseURI,
		"spec-kit Workflow Phase",
		mcp.WithResourceDescription("Current workflow phase, documents, and next command for the active feature"),
		mcp.WithMIMEType("application/json"),
	)
}

// GuidanceResource returns the MCP resource definition for the guidance table.
func (h *Handler) GuidanceResource() mcp.Resource {
	return mcp.NewResource(
		GuidanceURI,
		"spec-kit Phase Guidance",
		mcp.WithResourceDescription("What each workflow phase means and which /speckit.* command drives it"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandlePhase returns the current phase report as JSON.
func (h *Handler) HandlePhase(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	worktree, err := speckit.FindWorktree(h.repoPath)
	if err != nil {
		return nil, fmt.Errorf("finding worktree: %w", err)
	}

	resp := h.dispatcher.Do(ctx, worktree, dispatch.Request{Action: dispatch.ActionPhase})
	if !resp.Success {
		return errorResource(req.Params.URI, resp.Error), nil
	}
	return jsonResource(req.Params.URI, resp)
}

// guidanceEntry is one row of the guidance resource.
type guidanceEntry struct {
	Phase phase.Phase `json:"phase"`
	phase.Guidance
}

// HandleGuidance returns the static guidance table as JSON.
func (h *Handler) HandleGuidance(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entries := make([]guidanceEntry, 0, len(phase.Phases))
	for _, p := range phase.Phases {
		g, _ := phase.GuidanceFor(p)
		entries = append(entries, guidanceEntry{Phase: p, Guidance: g})
	}
	return jsonResource(req.Params.URI, map[string]any{
		"phases":   entries,
		"workflow": dispatch.Workflow(),
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
