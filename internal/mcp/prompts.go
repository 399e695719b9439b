package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("compose_landing_page",
		mcp.WithPromptDescription("Build a landing page from block templates and components"),
		mcp.WithArgument("product",
			mcp.ArgumentDescription("Product or company the page is for"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("tone",
			mcp.ArgumentDescription("Voice of the copy, e.g. friendly or formal"),
		),
	), s.handleLandingPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("restyle_page",
		mcp.WithPromptDescription("Apply a consistent color scheme to every component on the canvas"),
		mcp.WithArgument("primaryColor",
			mcp.ArgumentDescription("Main accent color, e.g. #3b82f6"),
			mcp.RequiredArgument(),
		),
	), s.handleRestylePrompt)
}

func (s *Server) handleLandingPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	product := req.Params.Arguments["product"]
	tone := req.Params.Arguments["tone"]
	if tone == "" {
		tone = "friendly"
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Compose a landing page for: %s", product),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Compose a landing page for "%s" in a %s tone. Follow these steps:

1. If no project is active, call new_project with a name for the page
2. Call list_templates and insert_template "hero", then "features", "testimonial" and "cta"
3. Call get_canvas and rewrite the placeholder copy with update_component so it is about %s
4. Finish with insert_template "footer" and save_project

Keep headings short. Only use the component kinds returned by list_component_kinds.`, product, tone, product),
				},
			},
		},
	}, nil
}

func (s *Server) handleRestylePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	color := req.Params.Arguments["primaryColor"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Restyle the canvas around %s", color),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Restyle the current canvas around the accent color %s:

1. Call get_canvas to see every component
2. Give buttons backgroundColor %s and textColor #ffffff via update_component_style
3. Give headings textColor %s
4. Leave text, images and dividers alone unless they clash

update_component_style refuses attributes a kind does not offer; skip those instead of retrying.`, color, color, color),
				},
			},
		},
	}, nil
}
