package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const recordURIPrefix = "explorer://record/"

func (s *Server) registerResources() {
	// ── explorer://configuration ───────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"explorer://configuration",
		"Active Configuration",
		mcp.WithMIMEType("application/json"),
	), s.handleConfigurationResource)

	// ── explorer://schema ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"explorer://schema",
		"Inferred Schema",
		mcp.WithMIMEType("application/json"),
	), s.handleSchemaResource)

	// ── explorer://recents ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"explorer://recents",
		"Recent Sources",
		mcp.WithMIMEType("application/json"),
	), s.handleRecentsResource)

	// ── explorer://record/{key} ────────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			recordURIPrefix+"{key}",
			"Record by Primary Key",
		),
		s.handleRecordResource,
	)
}

func (s *Server) handleConfigurationResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, s.explorer.Config())
}

func (s *Server) handleSchemaResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, s.explorer.Schema())
}

func (s *Server) handleRecentsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	recents, err := s.explorer.Recents(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, recents)
}

func (s *Server) handleRecordResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	key := strings.TrimPrefix(uri, recordURIPrefix)
	if key == "" || key == uri {
		return nil, fmt.Errorf("could not extract key from URI: %s", uri)
	}
	detail, err := s.explorer.Detail(key)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     detail,
		},
	}, nil
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
