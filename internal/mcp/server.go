package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"explorer/internal/service"
)

// DefaultRowLimit caps rows returned by view tools unless a limit is given.
const DefaultRowLimit = 50

// Server is the MCP server for the explorer.
// It exposes tools, resources, and prompts so AI agents can open sources,
// shape the view and read the resulting rows.
type Server struct {
	mcp      *server.MCPServer
	explorer *service.ExplorerService
	logger   *zap.Logger

	prefetchLimit int
}

// Deps holds all dependencies passed from the app layer to the MCP server.
type Deps struct {
	Explorer      *service.ExplorerService
	Logger        *zap.Logger
	Version       string
	PrefetchLimit int
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}
	s := &Server{
		explorer:      deps.Explorer,
		logger:        deps.Logger.Named("mcp"),
		prefetchLimit: deps.PrefetchLimit,
	}

	s.mcp = server.NewMCPServer(
		"explorer-mcp",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerSourceTools()
	s.registerConfigTools()
	s.registerViewTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// MCPServer exposes the underlying server, mainly for transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// waitIfAsked blocks until the active fetch settles when the caller set wait.
func (s *Server) waitIfAsked(ctx context.Context, req mcp.CallToolRequest) error {
	if !req.GetBool("wait", true) {
		return nil
	}
	return s.explorer.Wait(ctx)
}

func boolPtr(b bool) *bool { return &b }
