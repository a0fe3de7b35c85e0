// ABOUTME: MCP server initialization and configuration for quill.
// ABOUTME: Exposes blog reading, session, and post mutation tools to AI agents.
package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/2389-research/quill/internal/blog"
)

// Server wraps the MCP server with the blog backend and token store.
type Server struct {
	mcp    *gomcp.Server
	gw     blog.Gateway
	tokens blog.TokenStore
	logger *zap.Logger
}

// ServerOption configures optional Server dependencies.
type ServerOption func(*Server)

// WithLogger sets the logger used by tool handlers.
func WithLogger(l *zap.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates an MCP server backed by gw and tokens.
func NewServer(gw blog.Gateway, tokens blog.TokenStore, opts ...ServerOption) (*Server, error) {
	if gw == nil {
		return nil, fmt.Errorf("blog gateway is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token store is required")
	}

	mcpServer := gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "quill",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:    mcpServer,
		gw:     gw,
		tokens: tokens,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerPostTools()
	s.registerSessionTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}

func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolText(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}
}
