package resources

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

type fakeDispatcher struct {
	resp     *dispatch.Response
	worktree string
	req      dispatch.Request
}

func (f *fakeDispatcher) Do(_ context.Context, worktree string, req dispatch.Request) *dispatch.Response {
	f.worktree = worktree
	f.req = req
	return f.resp
}

func readText(t *testing.T, contents []mcp.ResourceContents) mcp.TextResourceContents {
	t.Helper()
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content is %T, want TextResourceContents", contents[0])
	}
	return tc
}

func readRequest(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func TestHandlePhase(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	fd := &fakeDispatcher{resp: &dispatch.Response{
		Success: true,
		PhaseReport: &dispatch.PhaseReport{
			Phase:    phase.Tasks,
			Docs:     []phase.Document{phase.DocSpec, phase.DocPlan},
			ReadyFor: []phase.Phase{phase.Tasks},
			Workflow: dispatch.Workflow(),
			Branch:   "012-search",
		},
	}}
	h := NewHandler(fd, root)

	contents, err := h.HandlePhase(context.Background(), readRequest(PhaseURI))
	if err != nil {
		t.Fatalf("HandlePhase: %v", err)
	}
	tc := readText(t, contents)
	if tc.MIMEType != "application/json" {
		t.Errorf("MIMEType = %s", tc.MIMEType)
	}
	if fd.req.Action != dispatch.ActionPhase {
		t.Errorf("Action = %s, want phase", fd.req.Action)
	}
	if fd.worktree != root {
		t.Errorf("worktree = %s, want %s", fd.worktree, root)
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(tc.Text), &m); err != nil {
		t.Fatalf("resource should be JSON: %v", err)
	}
	if m["phase"] != "tasks" {
		t.Errorf("phase = %v, want tasks", m["phase"])
	}
}

func TestHandlePhase_Failure(t *testing.T) {
	fd := &fakeDispatcher{resp: &dispatch.Response{Success: false, Error: "specify CLI not installed"}}
	h := NewHandler(fd, t.TempDir())

	contents, err := h.HandlePhase(context.Background(), readRequest(PhaseURI))
	if err != nil {
		t.Fatalf("HandlePhase: %v", err)
	}
	tc := readText(t, contents)
	if tc.MIMEType != "text/plain" || !strings.Contains(tc.Text, "specify CLI not installed") {
		t.Errorf("got %s %q, want text/plain error", tc.MIMEType, tc.Text)
	}
}

func TestHandleGuidance(t *testing.T) {
	h := NewHandler(&fakeDispatcher{}, "")

	contents, err := h.HandleGuidance(context.Background(), readRequest(GuidanceURI))
	if err != nil {
		t.Fatalf("HandleGuidance: %v", err)
	}

	var got struct {
		Phases []struct {
			Phase   string   `json:"phase"`
			Command string   `json:"command"`
			Next    []string `json:"next"`
		} `json:"phases"`
	}
	if err := json.Unmarshal([]byte(readText(t, contents).Text), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Phases) != len(phase.Phases) {
		t.Fatalf("got %d phases, want %d", len(got.Phases), len(phase.Phases))
	}
	for i, p := range phase.Phases {
		if got.Phases[i].Phase != string(p) {
			t.Errorf("entry %d phase = %s, want %s", i, got.Phases[i].Phase, p)
		}
		if got.Phases[i].Command != "/speckit."+string(p) {
			t.Errorf("entry %d command = %s", i, got.Phases[i].Command)
		}
	}
	if last := got.Phases[len(got.Phases)-1]; len(last.Next) != 0 {
		t.Errorf("implement.next = %v, want empty", last.Next)
	}
}

func TestResourceDefinitions(t *testing.T) {
	h := NewHandler(&fakeDispatcher{}, "")
	if h.PhaseResource().URI != PhaseURI {
		t.Errorf("PhaseResource URI = %s", h.PhaseResource().URI)
	}
	if h.GuidanceResource().URI != GuidanceURI {
		t.Errorf("GuidanceResource URI = %s", h.GuidanceResource().URI)
	}
}
