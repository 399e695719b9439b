package mcpserver

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"sitebuilder/internal/service"
)

// Server exposes the builder session to AI agents over MCP.
type Server struct {
	mcp     *server.MCPServer
	session *service.Session
	logger  *zap.Logger
}

// Deps holds the services passed from the app layer to the MCP server.
type Deps struct {
	Session *service.Session
	Logger  *zap.Logger
}

// New registers the builder's tools, resources and prompts.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		session: deps.Session,
		logger:  logger,
	}

	s.mcp = server.NewMCPServer(
		"sitebuilder-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerCatalogTools()
	s.registerCanvasTools()
	s.registerProjectTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio blocks serving JSON-RPC on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting MCP stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult returns v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return textResult(string(data)), nil
}

// appliedResult reports a model-level no-op without failing the call.
func appliedResult(applied bool, what string) *mcp.CallToolResult {
	if applied {
		return textResult(what + ": applied")
	}
	return textResult(what + ": no change (unknown id or kind)")
}

func requireString(args map[string]any, key string) (string, error) {
	v, _ := args[key].(string)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func getInt(args map[string]any, key string) (int, bool) {
	v, ok := args[key].(float64)
	return int(v), ok
}

func boolPtr(v bool) *bool { return &v }
