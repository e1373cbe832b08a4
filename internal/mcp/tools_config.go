package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"explorer/internal/domain"
)

func (s *Server) registerConfigTools() {
	// ── get_schema ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_schema",
		mcp.WithDescription("List the properties inferred from the active source that are not yet columns. Nested fields use dotted paths."),
		mcp.WithString("pattern", mcp.Description("Optional case-insensitive pattern on the path")),
	), s.handleGetSchema)

	// ── get_configuration ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_configuration",
		mcp.WithDescription("Show the configured columns with their filters, primary key and move affordances"),
		mcp.WithString("pattern", mcp.Description("Optional case-insensitive pattern on the path")),
	), s.handleGetConfiguration)

	// ── add_column / remove_column ─────────────────────
	s.mcp.AddTool(mcp.NewTool("add_column",
		mcp.WithDescription("Append a property path as the last column"),
		mcp.WithString("path", mcp.Description("Dotted property path"), mcp.Required()),
	), s.handleAddColumn)

	s.mcp.AddTool(mcp.NewTool("remove_column",
		mcp.WithDescription("Remove a column and its filters"),
		mcp.WithString("path", mcp.Description("Dotted property path"), mcp.Required()),
	), s.handleRemoveColumn)

	// ── move_column ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_column",
		mcp.WithDescription("Move a column one position left (up) or right (down)"),
		mcp.WithString("path", mcp.Description("Dotted property path"), mcp.Required()),
		mcp.WithString("direction", mcp.Description("up or down"), mcp.Required(), mcp.Enum("up", "down")),
	), s.handleMoveColumn)

	// ── set_filter_values / set_filter_search ──────────
	s.mcp.AddTool(mcp.NewTool("set_filter_values",
		mcp.WithDescription("Keep only rows whose value at path is one of values. An empty list removes the filter."),
		mcp.WithString("path", mcp.Description("Configured column path"), mcp.Required()),
		mcp.WithArray("values", mcp.Description("Allowed values, compared as strings"), mcp.WithStringItems()),
	), s.handleSetFilterValues)

	s.mcp.AddTool(mcp.NewTool("set_filter_search",
		mcp.WithDescription("Keep only rows whose value at path matches a case-insensitive regular expression. Empty clears it."),
		mcp.WithString("path", mcp.Description("Configured column path"), mcp.Required()),
		mcp.WithString("search", mcp.Description("Pattern")),
	), s.handleSetFilterSearch)

	s.mcp.AddTool(mcp.NewTool("clear_filters",
		mcp.WithDescription("Remove every column filter, keeping the columns"),
	), s.handleClearFilters)

	// ── set_primary_key / set_refresh ──────────────────
	s.mcp.AddTool(mcp.NewTool("set_primary_key",
		mcp.WithDescription("Choose the property path that identifies records; required for selection and record details"),
		mcp.WithString("path", mcp.Description("Dotted property path"), mcp.Required()),
	), s.handleSetPrimaryKey)

	s.mcp.AddTool(mcp.NewTool("set_refresh",
		mcp.WithDescription("Reload the active source on a cron schedule (e.g. '*/5 * * * *' or '@every 1m'). Empty disables it."),
		mcp.WithString("schedule", mcp.Description("Cron expression")),
	), s.handleSetRefresh)

	// ── undo / redo ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Revert the last configuration change"),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Re-apply the most recently undone configuration change"),
	), s.handleRedo)
}

func (s *Server) handleGetSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sch := s.explorer.Schema()
	return jsonResult(map[string]any{
		"available":   s.explorer.Available(req.GetString("pattern", "")),
		"unsupported": sch.Unsupported,
	})
}

func (s *Server) handleGetConfiguration(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := s.explorer.Config()
	return jsonResult(map[string]any{
		"url":        cfg.URL,
		"primaryKey": cfg.PrimaryKey,
		"refresh":    cfg.Refresh,
		"columns":    s.explorer.Configured(req.GetString("pattern", "")),
		"filters":    s.explorer.FilterControls(),
	})
}

func (s *Server) handleAddColumn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return nil, err
	}
	return configResult(s.explorer.AddPath(ctx, path))
}

func (s *Server) handleRemoveColumn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return nil, err
	}
	return configResult(s.explorer.RemovePath(ctx, path))
}

func (s *Server) handleMoveColumn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return nil, err
	}
	switch dir := req.GetString("direction", ""); dir {
	case "up":
		return configResult(s.explorer.RaisePath(ctx, path))
	case "down":
		return configResult(s.explorer.LowerPath(ctx, path))
	default:
		return nil, fmt.Errorf("direction must be up or down, got %q", dir)
	}
}

func (s *Server) handleSetFilterValues(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return nil, err
	}
	return configResult(s.explorer.SetValues(ctx, path, req.GetStringSlice("values", nil)))
}

func (s *Server) handleSetFilterSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return nil, err
	}
	return configResult(s.explorer.SetPathSearch(ctx, path, req.GetString("search", "")))
}

func (s *Server) handleClearFilters(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return configResult(s.explorer.ClearFilters(ctx))
}

func (s *Server) handleSetPrimaryKey(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return nil, err
	}
	return configResult(s.explorer.SetPrimaryKey(ctx, path))
}

func (s *Server) handleSetRefresh(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return configResult(s.explorer.SetRefresh(ctx, req.GetString("schedule", "")))
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return configResult(s.explorer.Undo(ctx))
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return configResult(s.explorer.Redo(ctx))
}

func configResult(cfg domain.Configuration, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return nil, err
	}
	return jsonResult(cfg)
}
