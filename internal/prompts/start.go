// Package prompts implements MCP prompt handlers for the spec-kit workflow.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// StartPrompt handles the speckit-start MCP prompt.
// It guides the AI to initialize spec-kit and open a feature branch.
type StartPrompt struct{}

// NewStartPrompt creates a StartPrompt.
func NewStartPrompt() *StartPrompt {
	return &StartPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StartPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("speckit-start",
		mcp.WithPromptDescription(
			"Start a new spec-kit feature. "+
				"Initializes the .specify scaffold if needed, creates a numbered "+
				"feature branch, and walks you to the first /speckit.* command.",
		),
		mcp.WithArgument("feature",
			mcp.ArgumentDescription("Short name of the feature, e.g. 'user-auth'"),
		),
	)
}

// Handle processes the speckit-start prompt request.
func (p *StartPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	feature := ""
	if args := req.Params.Arguments; args != nil {
		feature = strings.TrimSpace(args["feature"])
	}

	newStep := "2. Ask me for a short feature name, then run `speckit` with action='new' and that name\n"
	description := "Start spec-kit feature"
	if feature != "" {
		newStep = fmt.Sprintf("2. Run `speckit` with action='new' and feature='%s'\n", feature)
		description = fmt.Sprintf("Start spec-kit feature: %s", feature)
	}

	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"I want to start a new feature with spec-kit.\n\n" +
						"Please:\n" +
						"1. Run `speckit` with action='init' to make sure the .specify scaffold exists\n" +
						newStep +
						"3. Run `speckit` with action='phase' and tell me which /speckit.* command comes next\n" +
						"4. Guide me through each phase in order: constitution, specify, plan, tasks, implement",
				),
			},
		},
	}, nil
}
