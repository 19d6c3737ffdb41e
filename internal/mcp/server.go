// ABOUTME: MCP server initialization and configuration for xbm.
// ABOUTME: Exposes bookmark listing, adding, and removing to AI agents over stdio.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/xbm/internal/models"
)

// Bookmarks is the remote bookmark collection. Implemented by [xapi.Client].
type Bookmarks interface {
	FetchBookmarkPage(ctx context.Context, pageSize int, cursor string) (*models.Page, error)
	AddBookmark(ctx context.Context, tweetID string) (bool, error)
	RemoveBookmark(ctx context.Context, tweetID string) (bool, error)
}

// RangeResolver answers date-range queries. Implemented by [bookmarks.Resolver].
type RangeResolver interface {
	Resolve(ctx context.Context, start, end models.Date) (*models.Page, error)
}

// Server wraps the MCP server with the bookmark client and resolver.
type Server struct {
	mcp      *gomcp.Server
	client   Bookmarks
	resolver RangeResolver
	now      func() time.Time
}

// ServerOption configures optional Server dependencies.
type ServerOption func(*Server)

// WithClock sets the clock used to resolve "today" and "yesterday".
func WithClock(now func() time.Time) ServerOption {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// NewServer creates an MCP server with bookmark tools.
func NewServer(client Bookmarks, resolver RangeResolver, opts ...ServerOption) (*Server, error) {
	if client == nil {
		return nil, fmt.Errorf("bookmark client is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("date-range resolver is required")
	}

	mcpServer := gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "xbm",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:      mcpServer,
		client:   client,
		resolver: resolver,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerBookmarkTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}
