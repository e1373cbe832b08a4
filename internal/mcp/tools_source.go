package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"explorer/internal/source"
)

func (s *Server) registerSourceTools() {
	// ── open_source ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_source",
		mcp.WithDescription("Open a JSON data source (http(s):// URL or local file) and load its records. The saved column configuration for that source is restored."),
		mcp.WithString("url", mcp.Description("Location of the JSON array"), mcp.Required()),
		mcp.WithBoolean("wait", mcp.Description("Wait for the fetch to finish (default true)")),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to return (default 50)")),
	), s.handleOpenSource)

	// ── retry_source ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("retry_source",
		mcp.WithDescription("Fetch the active source again, e.g. after it was unavailable"),
		mcp.WithBoolean("wait", mcp.Description("Wait for the fetch to finish (default true)")),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to return (default 50)")),
	), s.handleRetrySource)

	// ── list_sources ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_sources",
		mcp.WithDescription("List recently opened sources (most recent first), example sources and supported location types"),
	), s.handleListSources)

	// ── prefetch_sources ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("prefetch_sources",
		mcp.WithDescription("Load several sources concurrently and cache their schemas without changing the active source"),
		mcp.WithArray("urls", mcp.Description("Source locations"), mcp.Required(), mcp.WithStringItems()),
	), s.handlePrefetchSources)

	// ── disconnect_source ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("disconnect_source",
		mcp.WithDescription("Close the active source. Its saved configuration and recent sources entry are kept"),
	), s.handleDisconnectSource)

	// ── forget_source ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("forget_source",
		mcp.WithDescription("Remove a source from the recent sources list and delete its saved configuration"),
		mcp.WithString("url", mcp.Description("Source location, defaults to the active source")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleForgetSource)
}

func (s *Server) handleOpenSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return nil, err
	}
	if _, err := s.explorer.Open(ctx, url); err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	if err := s.waitIfAsked(ctx, req); err != nil {
		return nil, err
	}
	return jsonResult(summarizeView(s.explorer.Snapshot(), req.GetInt("limit", DefaultRowLimit)))
}

func (s *Server) handleRetrySource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.explorer.Retry(ctx); err != nil {
		return nil, fmt.Errorf("retry source: %w", err)
	}
	if err := s.waitIfAsked(ctx, req); err != nil {
		return nil, err
	}
	return jsonResult(summarizeView(s.explorer.Snapshot(), req.GetInt("limit", DefaultRowLimit)))
}

func (s *Server) handleListSources(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recents, err := s.explorer.Recents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recents: %w", err)
	}
	return jsonResult(map[string]any{
		"active":   s.explorer.Config().URL,
		"recents":  recents,
		"examples": s.explorer.Examples(),
		"types":    source.List(),
	})
}

func (s *Server) handlePrefetchSources(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	urls := req.GetStringSlice("urls", nil)
	if len(urls) == 0 {
		return nil, fmt.Errorf("urls is required")
	}
	return jsonResult(s.explorer.Prefetch(ctx, urls, s.prefetchLimit))
}

func (s *Server) handleDisconnectSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url := s.explorer.Config().URL
	if err := s.explorer.Disconnect(ctx); err != nil {
		return nil, err
	}
	if url == "" {
		return textResult("No source was open."), nil
	}
	return textResult(fmt.Sprintf("Disconnected from %s.", url)), nil
}

func (s *Server) handleForgetSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url := req.GetString("url", s.explorer.Config().URL)
	if err := s.explorer.Forget(ctx, url); err != nil {
		return nil, fmt.Errorf("forget source: %w", err)
	}
	return textResult(fmt.Sprintf("Forgot %s.", url)), nil
}
