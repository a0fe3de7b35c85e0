// ABOUTME: MCP tool implementations for blog posts.
// ABOUTME: Registers list, read, ownership, create, update, and delete tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/2389-research/quill/internal/blog"
	"github.com/2389-research/quill/internal/models"
	"github.com/2389-research/quill/internal/search"
)

const declinedText = "confirmation declined: pass \"confirm\": true to proceed"

func (s *Server) registerPostTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "list_posts",
		Description: "List blog posts in the order the server returns them.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"limit": {"type": "number", "description": "Maximum number of posts to show (default all, 10 when searching)"},
				"query": {"type": "string", "description": "Only show posts matching this query, best match first"}
			}
		}`),
	}, s.handleListPosts)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "read_post",
		Description: "Read a single post by id, including whether the current login may edit it.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "The post id.", "minLength": 1}
			},
			"required": ["id"]
		}`),
	}, s.handleReadPost)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "verify_owner",
		Description: "Ask the server whether the current login owns a post.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "The post id.", "minLength": 1}
			},
			"required": ["id"]
		}`),
	}, s.handleVerifyOwner)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "create_post",
		Description: "Create a new post. Requires login and \"confirm\": true.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Post title.", "minLength": 1},
				"content": {"type": "string", "description": "Post body in Markdown."},
				"confirm": {"type": "boolean", "description": "Must be true to send the change."}
			},
			"required": ["title", "content"]
		}`),
	}, s.handleCreatePost)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "update_post",
		Description: "Update a post you own. Omitted fields keep their current value. Requires \"confirm\": true.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "The post id.", "minLength": 1},
				"title": {"type": "string", "description": "New title."},
				"content": {"type": "string", "description": "New body in Markdown."},
				"confirm": {"type": "boolean", "description": "Must be true to send the change."}
			},
			"required": ["id"]
		}`),
	}, s.handleUpdatePost)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "delete_post",
		Description: "Delete a post. The server refuses posts you do not own. Requires \"confirm\": true.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "The post id.", "minLength": 1},
				"confirm": {"type": "boolean", "description": "Must be true to send the change."}
			},
			"required": ["id"]
		}`),
	}, s.handleDeletePost)
}

// outcome records what the controller told the user during one tool call.
type outcome struct {
	alerts []string
	paths  []string
}

func (o *outcome) Alert(msg string) {
	o.alerts = append(o.alerts, msg)
}

func (o *outcome) Navigate(path string) {
	o.paths = append(o.paths, path)
}

func (o *outcome) summary() string {
	return strings.Join(o.alerts, "; ")
}

// driver builds a fresh controller for one tool call. The user's confirm flag
// answers every prompt.
func (s *Server) driver(confirm bool) (*blog.Driver, *outcome) {
	out := &outcome{}
	ctrl := blog.NewController(s.gw, s.tokens, out, out, blog.WithLogger(s.logger))
	return blog.NewDriver(ctrl, blog.ConfirmFunc(func(context.Context, string) bool {
		return confirm
	})), out
}

func (s *Server) handleListPosts(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Limit int    `json:"limit"`
		Query string `json:"query"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	posts, err := blog.NewListController(s.gw, s.tokens).LoadAll(ctx)
	if err != nil {
		return toolError("%v", err), nil
	}
	if args.Query != "" {
		results, err := search.Posts(search.NewHashEmbedder(0), posts, args.Query, search.Options{Limit: args.Limit})
		if err != nil {
			return toolError("failed to search posts: %v", err), nil
		}
		posts = posts[:0]
		for _, r := range results {
			posts = append(posts, r.Post)
		}
	}
	if len(posts) == 0 {
		return toolText("No posts found."), nil
	}
	if args.Limit > 0 && args.Limit < len(posts) {
		posts = posts[:args.Limit]
	}

	var sb strings.Builder
	for _, p := range posts {
		sb.WriteString(fmt.Sprintf("[%s] %s (updated %s)\n", p.ID, p.Title, p.UpdatedAt.Format("2006-01-02 15:04")))
	}
	return toolText("%s", sb.String()), nil
}

func (s *Server) handleReadPost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.ID == "" {
		return toolError("id is required"), nil
	}

	d, _ := s.driver(false)
	if d.Open(ctx, blog.Route{Kind: blog.RouteRead, ID: args.ID}) != blog.StateViewing {
		return toolError("%s", blog.NotFoundMessage), nil
	}

	ctrl := d.Controller()
	return toolText("%s", formatPost(ctrl.Post(), ctrl.CanEdit())), nil
}

func formatPost(p *models.Post, editable bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n%s\n\n---\n", p.Title, p.Content))
	sb.WriteString(fmt.Sprintf("ID: %s\nAuthor: %s\nUpdated: %s\n", p.ID, p.UserID, p.UpdatedAt.Format("2006-01-02 15:04:05")))
	if editable {
		sb.WriteString("Editable: yes\n")
	} else {
		sb.WriteString("Editable: no\n")
	}
	return sb.String()
}

func (s *Server) handleVerifyOwner(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.ID == "" {
		return toolError("id is required"), nil
	}

	owned := blog.NewVerifier(s.gw, s.tokens, s.logger).Check(ctx, args.ID)
	return toolText("isOwner: %t", owned.Allowed()), nil
}

func (s *Server) handleCreatePost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Confirm bool   `json:"confirm"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Title == "" {
		return toolError("title is required"), nil
	}
	if !args.Confirm {
		return toolError(declinedText), nil
	}
	if _, ok := s.tokens.Get(); !ok {
		return toolError("not logged in - use the login tool first"), nil
	}

	d, out := s.driver(true)
	d.Open(ctx, blog.Route{Kind: blog.RouteEdit, ID: models.NewPostID})
	if err := d.Save(ctx, args.Title, args.Content); err != nil {
		s.logger.Warn("create_post failed", zap.Error(err))
		return toolError("%s: %v", out.summary(), err), nil
	}
	return toolText("%s Post %q created.", blog.AlertSaved, args.Title), nil
}

func (s *Server) handleUpdatePost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		ID      string  `json:"id"`
		Title   *string `json:"title"`
		Content *string `json:"content"`
		Confirm bool    `json:"confirm"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.ID == "" || args.ID == models.NewPostID {
		return toolError("id of an existing post is required"), nil
	}
	if !args.Confirm {
		return toolError(declinedText), nil
	}

	d, out := s.driver(true)
	switch d.Open(ctx, blog.Route{Kind: blog.RouteEdit, ID: args.ID}) {
	case blog.StateEditing:
	case blog.StateRedirected:
		return toolError("you do not own post %s", args.ID), nil
	default:
		return toolError("%s", blog.NotFoundMessage), nil
	}

	draft := d.Controller().Draft()
	if args.Title != nil {
		draft.Title = *args.Title
	}
	if args.Content != nil {
		draft.Content = *args.Content
	}

	if err := d.Save(ctx, draft.Title, draft.Content); err != nil {
		s.logger.Warn("update_post failed", zap.String("post_id", args.ID), zap.Error(err))
		return toolError("%s: %v", out.summary(), err), nil
	}
	return toolText("%s Post %s updated.", blog.AlertSaved, args.ID), nil
}

func (s *Server) handleDeletePost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		ID      string `json:"id"`
		Confirm bool   `json:"confirm"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.ID == "" {
		return toolError("id is required"), nil
	}
	if !args.Confirm {
		return toolError(declinedText), nil
	}

	d, out := s.driver(true)
	if d.Open(ctx, blog.Route{Kind: blog.RouteRead, ID: args.ID}) != blog.StateViewing {
		return toolError("%s", blog.NotFoundMessage), nil
	}

	err := d.Delete(ctx)
	switch {
	case errors.Is(err, blog.ErrDeclined):
		return toolError(declinedText), nil
	case err != nil:
		s.logger.Warn("delete_post failed", zap.String("post_id", args.ID), zap.Error(err))
		return toolError("%s: %v", out.summary(), err), nil
	}
	return toolText("%s Post %s removed.", blog.AlertDeleted, args.ID), nil
}
