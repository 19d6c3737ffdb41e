// ABOUTME: MCP tool implementations for bookmark operations.
// ABOUTME: Registers list_bookmarks, add_bookmark, and remove_bookmark tools.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/xbm/internal/bookmarks"
	"github.com/2389-research/xbm/internal/format"
	"github.com/2389-research/xbm/internal/models"
	"github.com/2389-research/xbm/internal/xapi"
)

const defaultListMax = 10

func (s *Server) registerBookmarkTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "list_bookmarks",
		Description: "List the user's X bookmarks, newest first. With since/until, returns every bookmark first seen in that date range.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"max": {"type": "number", "description": "Maximum bookmarks to return without a date range (1-100, default 10)"},
				"since": {"type": "string", "description": "Start date: 'today', 'yesterday', or YYYY-MM-DD"},
				"until": {"type": "string", "description": "End date: 'today', 'yesterday', or YYYY-MM-DD"},
				"format": {"type": "string", "enum": ["markdown", "json"], "description": "Output format (default markdown)"}
			}
		}`),
	}, s.handleListBookmarks)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "add_bookmark",
		Description: "Bookmark a tweet by id or x.com/twitter.com status URL.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"tweet": {"type": "string", "description": "Tweet id or status URL", "minLength": 1}
			},
			"required": ["tweet"]
		}`),
	}, s.handleAddBookmark)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "remove_bookmark",
		Description: "Remove a bookmark by tweet id or status URL.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"tweet": {"type": "string", "description": "Tweet id or status URL", "minLength": 1}
			},
			"required": ["tweet"]
		}`),
	}, s.handleRemoveBookmark)
}

func (s *Server) handleListBookmarks(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Max    int    `json:"max"`
		Since  string `json:"since"`
		Until  string `json:"until"`
		Format string `json:"format"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	mode := format.ModeMarkdown
	switch args.Format {
	case "", "markdown":
	case "json":
		mode = format.ModeJSON
	default:
		return toolError("unsupported format %q", args.Format), nil
	}

	today := models.Today(s.now)
	dr, ranged, err := bookmarks.ResolveDateRange(args.Since, args.Until, today)
	if err != nil {
		return toolError("%v", err), nil
	}

	var page *models.Page
	if ranged {
		page, err = s.resolver.Resolve(ctx, dr.Start, dr.End)
	} else {
		if args.Max <= 0 {
			args.Max = defaultListMax
		}
		page, err = s.client.FetchBookmarkPage(ctx, args.Max, "")
	}
	if err != nil {
		return toolError("failed to list bookmarks: %v", describe(err)), nil
	}

	if len(page.Data) == 0 {
		return &gomcp.CallToolResult{
			Content: []gomcp.Content{&gomcp.TextContent{Text: "No bookmarks found."}},
		}, nil
	}

	var buf bytes.Buffer
	if err := format.New(&buf, io.Discard, mode, false).Page(page, "Bookmarks"); err != nil {
		return toolError("failed to render bookmarks: %v", err), nil
	}
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: buf.String()}},
	}, nil
}

func (s *Server) handleAddBookmark(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	return s.changeBookmark(ctx, req, "add", s.client.AddBookmark)
}

func (s *Server) handleRemoveBookmark(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	return s.changeBookmark(ctx, req, "remove", s.client.RemoveBookmark)
}

func (s *Server) changeBookmark(ctx context.Context, req *gomcp.CallToolRequest, verb string,
	call func(context.Context, string) (bool, error)) (*gomcp.CallToolResult, error) {
	var args struct {
		Tweet string `json:"tweet"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Tweet == "" {
		return toolError("tweet is required"), nil
	}

	id, err := bookmarks.ParseTweetID(args.Tweet)
	if err != nil {
		return toolError("%v", err), nil
	}

	bookmarked, err := call(ctx, id)
	if err != nil {
		return toolError("failed to %s bookmark: %v", verb, describe(err)), nil
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{
			Text: fmt.Sprintf("Tweet %s bookmarked: %t", id, bookmarked),
		}},
	}, nil
}

// describe adds a retry hint to rate-limit errors.
func describe(err error) string {
	if errors.Is(err, xapi.ErrRateLimited) {
		return err.Error() + " (try again later)"
	}
	return err.Error()
}

func toolError(msg string, args ...any) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(msg, args...)}},
		IsError: true,
	}
}
