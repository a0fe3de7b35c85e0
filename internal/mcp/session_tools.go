// ABOUTME: MCP tools for the stored credential.
// ABOUTME: Registers login and logout.
package mcp

import (
	"context"
	"encoding/json"
	"errors"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/2389-research/quill/internal/api"
	"github.com/2389-research/quill/internal/blog"
)

func (s *Server) registerSessionTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "login",
		Description: "Log in to the blog with email and password. The token is kept for later post changes.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"email": {"type": "string", "description": "Account email.", "minLength": 1},
				"password": {"type": "string", "description": "Account password.", "minLength": 1}
			},
			"required": ["email", "password"]
		}`),
	}, s.handleLogin)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "logout",
		Description: "Forget the stored blog token.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleLogout)
}

func (s *Server) session() *blog.Session {
	return blog.NewSession(s.gw, s.tokens, blog.NavigatorFunc(func(string) {}))
}

func (s *Server) handleLogin(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Email == "" || args.Password == "" {
		return toolError("email and password are required"), nil
	}

	if err := s.session().Login(ctx, args.Email, args.Password); err != nil {
		if errors.Is(err, api.ErrInvalidCredentials) {
			return toolError("%v", api.ErrInvalidCredentials), nil
		}
		s.logger.Warn("login failed", zap.Error(err))
		return toolError("login failed: %v", err), nil
	}

	return toolText("Logged in as %s", args.Email), nil
}

func (s *Server) handleLogout(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	if err := s.session().Logout(); err != nil {
		return toolError("failed to log out: %v", err), nil
	}
	return toolText("Logged out"), nil
}
