package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/speckit-mcp/internal/dispatch"
	"github.com/HendryAvila/speckit-mcp/internal/phase"
)

// --- Test helpers ---

type fakeDispatcher struct {
	resp     *dispatch.Response
	worktree string
	req      dispatch.Request
	calls    int
}

func (f *fakeDispatcher) Do(_ context.Context, worktree string, req dispatch.Request) *dispatch.Response {
	f.calls++
	f.worktree = worktree
	f.req = req
	return f.resp
}

// isErrorResult checks if the result is a tool error.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func callTool(t *testing.T, tool *SpeckitTool, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	return result
}

// --- SpeckitTool ---

func TestSpeckitTool_Definition(t *testing.T) {
	def := NewSpeckitTool(&fakeDispatcher{}, "").Definition()
	if def.Name != "speckit" {
		t.Errorf("Name = %s, want speckit", def.Name)
	}
	for _, arg := range []string{"action", "feature", "test_type"} {
		if _, ok := def.InputSchema.Properties[arg]; !ok {
			t.Errorf("schema should declare %q", arg)
		}
	}
	if len(def.InputSchema.Required) != 1 || def.InputSchema.Required[0] != "action" {
		t.Errorf("Required = %v, want [action]", def.InputSchema.Required)
	}
}

func TestSpeckitTool_Handle_Phase(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".specify"), 0o755); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	fd := &fakeDispatcher{resp: &dispatch.Response{
		Success: true,
		PhaseReport: &dispatch.PhaseReport{
			Phase:    phase.Plan,
			Docs:     []phase.Document{phase.DocSpec},
			ReadyFor: []phase.Phase{phase.Plan},
			Workflow: dispatch.Workflow(),
			Branch:   "003-auth",
		},
	}}
	tool := NewSpeckitTool(fd, sub)

	result := callTool(t, tool, map[string]interface{}{"action": "phase"})
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	if fd.worktree != root {
		t.Errorf("worktree = %s, want %s (found by walking up to .specify)", fd.worktree, root)
	}
	if fd.req.Action != dispatch.ActionPhase {
		t.Errorf("Action = %s, want phase", fd.req.Action)
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(getResultText(result)), &m); err != nil {
		t.Fatalf("result should be JSON: %v", err)
	}
	if m["phase"] != "plan" {
		t.Errorf("phase = %v, want plan", m["phase"])
	}
}

func TestSpeckitTool_Handle_PassesArguments(t *testing.T) {
	fd := &fakeDispatcher{resp: &dispatch.Response{Success: true, Output: "ok"}}
	tool := NewSpeckitTool(fd, t.TempDir())

	callTool(t, tool, map[string]interface{}{
		"action":    "new",
		"feature":   "user-auth",
		"test_type": "unit",
	})

	if fd.req.Feature != "user-auth" {
		t.Errorf("Feature = %q, want user-auth", fd.req.Feature)
	}
	if fd.req.TestType != "unit" {
		t.Errorf("TestType = %q, want unit", fd.req.TestType)
	}
}

func TestSpeckitTool_Handle_FailureIsToolError(t *testing.T) {
	fd := &fakeDispatcher{resp: &dispatch.Response{Success: false, Error: "Unknown action: deploy"}}
	tool := NewSpeckitTool(fd, t.TempDir())

	result := callTool(t, tool, map[string]interface{}{"action": "deploy"})
	if !isErrorResult(result) {
		t.Fatal("a failed response should be a tool error")
	}
	text := getResultText(result)
	if !strings.Contains(text, `"success": false`) || !strings.Contains(text, "Unknown action: deploy") {
		t.Errorf("error result should carry the response JSON, got: %s", text)
	}
}

func TestSpeckitTool_Handle_MissingAction(t *testing.T) {
	fd := &fakeDispatcher{}
	tool := NewSpeckitTool(fd, t.TempDir())

	result := callTool(t, tool, map[string]interface{}{})
	if !isErrorResult(result) {
		t.Error("should return error when action is missing")
	}
	if fd.calls != 0 {
		t.Errorf("dispatcher called %d times, want 0", fd.calls)
	}
}
