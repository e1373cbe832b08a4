package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerViewTools() {
	// ── view_rows ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("view_rows",
		mcp.WithDescription("Return the visible rows projected onto the configured columns. The search applies to every configured column and is not saved."),
		mcp.WithString("search", mcp.Description("Optional free-text pattern; omit to keep the current one, empty string clears it")),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to return (default 50)")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleViewRows)

	// ── selection ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("toggle_selected",
		mcp.WithDescription("Select or unselect rows by primary key value"),
		mcp.WithArray("keys", mcp.Description("Primary key values"), mcp.Required(), mcp.WithStringItems()),
	), s.handleToggleSelected)

	s.mcp.AddTool(mcp.NewTool("select_all",
		mcp.WithDescription("Select every visible row"),
	), s.handleSelectAll)

	s.mcp.AddTool(mcp.NewTool("clear_selection",
		mcp.WithDescription("Unselect all rows and show every row again"),
	), s.handleClearSelection)

	s.mcp.AddTool(mcp.NewTool("filter_selected",
		mcp.WithDescription("Show only the selected rows. Column filters and the search are cleared."),
	), s.handleFilterSelected)

	s.mcp.AddTool(mcp.NewTool("show_all",
		mcp.WithDescription("Leave selection-only mode, keeping the selection"),
	), s.handleShowAll)

	// ── aggregate / get_record ─────────────────────────
	s.mcp.AddTool(mcp.NewTool("aggregate",
		mcp.WithDescription("Count values of each configured column with discrete options over the selected visible rows"),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleAggregate)

	s.mcp.AddTool(mcp.NewTool("get_record",
		mcp.WithDescription("Return the full JSON of the record with the given primary key value"),
		mcp.WithString("key", mcp.Description("Primary key value"), mcp.Required()),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleGetRecord)
}

func (s *Server) handleViewRows(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if search, ok := req.GetArguments()["search"].(string); ok {
		s.explorer.SetSearch(ctx, search)
	}
	return s.viewResult(req)
}

func (s *Server) handleToggleSelected(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keys := req.GetStringSlice("keys", nil)
	if len(keys) == 0 {
		return nil, fmt.Errorf("keys is required")
	}
	for _, k := range keys {
		if _, err := s.explorer.ToggleSelected(ctx, k); err != nil {
			return nil, err
		}
	}
	return s.viewResult(req)
}

func (s *Server) handleSelectAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.explorer.SelectAll(ctx); err != nil {
		return nil, err
	}
	return s.viewResult(req)
}

func (s *Server) handleClearSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.explorer.ClearSelection(ctx)
	return s.viewResult(req)
}

func (s *Server) handleFilterSelected(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.explorer.FilterSelected(ctx); err != nil {
		return nil, err
	}
	return s.viewResult(req)
}

func (s *Server) handleShowAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.explorer.ShowAll(ctx)
	return s.viewResult(req)
}

func (s *Server) handleAggregate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	breakdowns, err := s.explorer.Aggregate()
	if err != nil {
		return nil, err
	}
	return jsonResult(breakdowns)
}

func (s *Server) handleGetRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return nil, err
	}
	detail, err := s.explorer.Detail(key)
	if err != nil {
		return nil, err
	}
	return textResult(detail), nil
}

func (s *Server) viewResult(req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(summarizeView(s.explorer.Snapshot(), req.GetInt("limit", DefaultRowLimit)))
}
