package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/HendryAvila/speckit-mcp/internal/dispatch"
	"github.com/HendryAvila/speckit-mcp/internal/phase"
)

// Text renders responses for a terminal. Colors follow the writer's
// capabilities, so piped output stays plain.
type Text struct {
	done    lipgloss.Style
	current lipgloss.Style
	pending lipgloss.Style
	errorS  lipgloss.Style
	label   lipgloss.Style
	detail  lipgloss.Style
}

// NewText creates a Text renderer for w.
func NewText(w io.Writer) *Text {
	r := lipgloss.NewRenderer(w)
	return &Text{
		done:    r.NewStyle().Foreground(lipgloss.Color("#4CAF50")),
		current: r.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true),
		pending: r.NewStyle().Foreground(lipgloss.Color("#999999")),
		errorS:  r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		label:   r.NewStyle().Bold(true),
		detail:  r.NewStyle().Foreground(lipgloss.Color("#A0AEC0")),
	}
}

// Render formats one response.
func (t *Text) Render(resp *dispatch.Response) string {
	if resp == nil {
		return ""
	}
	if !resp.Success {
		var sb strings.Builder
		sb.WriteString(t.errorS.Render("✗ " + resp.Error))
		if resp.Output != "" {
			sb.WriteString("\n\n" + strings.TrimRight(resp.Output, "\n"))
		}
		return sb.String()
	}

	var parts []string
	if resp.Message != "" {
		parts = append(parts, t.done.Render("✓ ")+resp.Message)
	}
	if resp.PhaseReport != nil {
		parts = append(parts, t.renderPhase(resp.PhaseReport))
	}
	if resp.HistoryReport != nil {
		parts = append(parts, t.renderHistory(resp.HistoryReport))
	}
	if resp.Output != "" {
		parts = append(parts, strings.TrimRight(resp.Output, "\n"))
	}
	if len(parts) == 0 {
		return t.done.Render("✓ ok")
	}
	return strings.Join(parts, "\n")
}

func (t *Text) renderPhase(r *dispatch.PhaseReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s", t.label.Render("Phase:"), t.current.Render(string(r.Phase)))
	if r.Branch != "" {
		sb.WriteString(t.detail.Render(fmt.Sprintf("  (branch %s)", r.Branch)))
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "%s %s\n", t.label.Render("Workflow:"), t.pipeline(r.Workflow.Phases, r.Phase))

	docs := make([]string, len(r.Docs))
	for i, d := range r.Docs {
		docs[i] = string(d)
	}
	fmt.Fprintf(&sb, "%s %s\n", t.label.Render("Docs:"), orNone(strings.Join(docs, ", ")))
	fmt.Fprintf(&sb, "%s %s\n", t.label.Render("Ready for:"), orNone(joinPhases(r.ReadyFor)))

	g := r.Guidance
	if g.Command != "" {
		fmt.Fprintf(&sb, "%s %s %s\n", t.label.Render("Run:"), g.Command, t.detail.Render("("+g.Description+")"))
	}
	if len(g.Optional) > 0 {
		fmt.Fprintf(&sb, "%s %s\n", t.label.Render("Optional:"), strings.Join(g.Optional, ", "))
	}
	if r.PreviousPhase != "" {
		fmt.Fprintf(&sb, "%s %s → %s\n", t.label.Render("Moved:"), r.PreviousPhase, r.Phase)
	}
	if g.Message != "" {
		sb.WriteString(t.detail.Render(g.Message) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// pipeline draws the phase order with completed, current, and pending
// phases styled apart.
func (t *Text) pipeline(phases []phase.Phase, current phase.Phase) string {
	cur := current.Index()
	parts := make([]string, len(phases))
	for i, p := range phases {
		switch {
		case p.Index() < cur:
			parts[i] = t.done.Render("✓ " + string(p))
		case p == current:
			parts[i] = t.current.Render("▸ " + string(p))
		default:
			parts[i] = t.pending.Render(string(p))
		}
	}
	return strings.Join(parts, t.pending.Render(" › "))
}

func (t *Text) renderHistory(h *dispatch.HistoryReport) string {
	if len(h.History) == 0 {
		return t.detail.Render("No inspections recorded yet.")
	}
	lines := make([]string, 0, len(h.History)+1)
	lines = append(lines, t.label.Render(fmt.Sprintf("%-20s  %-24s  %-10s  %s", "WHEN", "BRANCH", "PHASE", "READY FOR")))
	for _, e := range h.History {
		lines = append(lines, fmt.Sprintf("%-20s  %-24s  %-10s  %s",
			e.CreatedAt, e.Branch, e.Phase, orNone(joinPhases(e.ReadyFor))))
	}
	return strings.Join(lines, "\n")
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
