package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("explore_source",
		mcp.WithPromptDescription("Guide through opening a JSON source and building a useful table view"),
		mcp.WithArgument("url",
			mcp.ArgumentDescription("Location of the JSON array"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("question",
			mcp.ArgumentDescription("What you want to find out from the data"),
		),
	), s.handleExplorePrompt)
}

func (s *Server) handleExplorePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	url := req.Params.Arguments["url"]
	question := req.Params.Arguments["question"]
	if question == "" {
		question = "Give an overview of what the records contain."
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Explore %s", url),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Explore the JSON source at %s.

Goal: %s

Steps:
1. Call open_source with the url.
2. Call get_schema to see the available property paths.
3. Pick a primary key with set_primary_key (an id-like path).
4. Add the relevant paths with add_column, in the order you want them shown.
5. Narrow the rows with set_filter_values for paths that list options, or set_filter_search otherwise.
6. Read the result with view_rows; use aggregate over selected rows for distributions.
7. Use get_record to inspect a single record in full.`, url, question),
				},
			},
		},
	}, nil
}
