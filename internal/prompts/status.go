package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the speckit-status MCP prompt.
// It instructs the AI to read and present the current workflow phase.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("speckit-status",
		mcp.WithPromptDescription(
			"Check where the current feature is in the spec-kit workflow. "+
				"Shows the inferred phase, which documents exist, "+
				"and which /speckit.* command to run next.",
		),
	)
}

// Handle processes the speckit-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "spec-kit Workflow Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `speckit` with action='phase' to check my workflow status.\n\n" +
						"Then:\n" +
						"1. Show me the phase pipeline with the current phase highlighted\n" +
						"2. List the documents that exist and the gating document that is missing\n" +
						"3. Tell me exactly which /speckit.* command I should run next\n" +
						"4. If previousPhase is set, mention what changed since the last check",
				),
			},
		},
	}, nil
}
