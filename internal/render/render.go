// Package render turns dispatcher responses into CLI output: indented
// JSON for scripts and a styled text view for people.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/HendryAvila/speckit-mcp/internal/dispatch"
	"github.com/HendryAvila/speckit-mcp/internal/phase"
)

// Format selects an output renderer.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat validates a --format value. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or text)", s)
	}
}

// JSON returns the response as indented JSON.
func JSON(resp *dispatch.Response) ([]byte, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling response: %w", err)
	}
	return data, nil
}

// Write renders resp to w in the given format, followed by a newline.
func Write(w io.Writer, format Format, resp *dispatch.Response) error {
	if format == FormatText {
		_, err := io.WriteString(w, NewText(w).Render(resp)+"\n")
		return err
	}
	data, err := JSON(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// Fingerprint is a stable key for the parts of a response that describe
// workflow state. Two responses with equal fingerprints show the same
// phase, readiness, and documents.
func Fingerprint(resp *dispatch.Response) string {
	if resp == nil {
		return ""
	}
	if !resp.Success || resp.PhaseReport == nil {
		return "error:" + resp.Error
	}
	return fmt.Sprintf("%s|%s|%s|%s",
		resp.Branch, resp.Phase, joinPhases(resp.ReadyFor), joinDocs(resp.Docs))
}

func joinPhases(ps []phase.Phase) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = string(p)
	}
	return strings.Join(parts, ",")
}

func joinDocs(ds []phase.Document) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = string(d)
	}
	return strings.Join(parts, ",")
}
