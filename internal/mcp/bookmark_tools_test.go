// ABOUTME: Tests for bookmark MCP tool handlers.
// ABOUTME: Covers listing with and without date ranges, adding, removing, and error reporting.
package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/xbm/internal/models"
	"github.com/2389-research/xbm/internal/xapi"
)

type fakeBookmarks struct {
	page     *models.Page
	err      error
	pageSize int
	added    []string
	removed  []string
}

func (f *fakeBookmarks) FetchBookmarkPage(_ context.Context, pageSize int, _ string) (*models.Page, error) {
	f.pageSize = pageSize
	if f.err != nil {
		return nil, f.err
	}
	if f.page == nil {
		return &models.Page{}, nil
	}
	return f.page, nil
}

func (f *fakeBookmarks) AddBookmark(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.added = append(f.added, id)
	return true, nil
}

func (f *fakeBookmarks) RemoveBookmark(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.removed = append(f.removed, id)
	return false, nil
}

type fakeResolver struct {
	page       *models.Page
	start, end models.Date
	calls      int
}

func (f *fakeResolver) Resolve(_ context.Context, start, end models.Date) (*models.Page, error) {
	f.calls++
	f.start, f.end = start, end
	if f.page == nil {
		return &models.Page{Data: []models.Tweet{}}, nil
	}
	return f.page, nil
}

func newToolServer(t *testing.T, client *fakeBookmarks, resolver *fakeResolver) *Server {
	t.Helper()
	now := time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC)
	s, err := NewServer(client, resolver, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	return s
}

func callTool(t *testing.T, s *Server, name string, args any) *gomcp.CallToolResult {
	t.Helper()
	argsJSON, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("failed to marshal args: %v", err)
	}
	req := &gomcp.CallToolRequest{
		Params: &gomcp.CallToolParamsRaw{
			Name:      name,
			Arguments: argsJSON,
		},
	}

	ctx := context.Background()
	var result *gomcp.CallToolResult
	switch name {
	case "list_bookmarks":
		result, err = s.handleListBookmarks(ctx, req)
	case "add_bookmark":
		result, err = s.handleAddBookmark(ctx, req)
	case "remove_bookmark":
		result, err = s.handleRemoveBookmark(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return result
}

func getTextContent(result *gomcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if tc, ok := result.Content[0].(*gomcp.TextContent); ok {
		return tc.Text
	}
	return ""
}

func TestListBookmarksDirect(t *testing.T) {
	client := &fakeBookmarks{page: &models.Page{
		Data:     []models.Tweet{{ID: "1", Text: "hello world", AuthorID: "7"}},
		Includes: models.Includes{Users: []models.User{{ID: "7", Username: "carol"}}},
	}}
	resolver := &fakeResolver{}
	s := newToolServer(t, client, resolver)

	result := callTool(t, s, "list_bookmarks", map[string]any{})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", getTextContent(result))
	}

	text := getTextContent(result)
	if !strings.Contains(text, "**@carol**") || !strings.Contains(text, "hello world") {
		t.Errorf("unexpected markdown: %s", text)
	}
	if client.pageSize != defaultListMax {
		t.Errorf("page size = %d, want %d", client.pageSize, defaultListMax)
	}
	if resolver.calls != 0 {
		t.Error("resolver should not run without a date range")
	}
}

func TestListBookmarksDateRange(t *testing.T) {
	resolver := &fakeResolver{page: &models.Page{Data: []models.Tweet{{ID: "9", Text: "ranged"}}}}
	s := newToolServer(t, &fakeBookmarks{}, resolver)

	result := callTool(t, s, "list_bookmarks", map[string]any{
		"since":  "yesterday",
		"format": "json",
	})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", getTextContent(result))
	}

	if resolver.start.String() != "2026-02-09" || resolver.end.String() != "2026-02-10" {
		t.Errorf("range = %s..%s, want 2026-02-09..2026-02-10", resolver.start, resolver.end)
	}

	var tweets []models.Tweet
	if err := json.Unmarshal([]byte(getTextContent(result)), &tweets); err != nil {
		t.Fatalf("json format output did not decode: %v", err)
	}
	if len(tweets) != 1 || tweets[0].ID != "9" {
		t.Errorf("tweets = %+v", tweets)
	}
}

func TestListBookmarksEmpty(t *testing.T) {
	s := newToolServer(t, &fakeBookmarks{}, &fakeResolver{})

	result := callTool(t, s, "list_bookmarks", map[string]any{"until": "today"})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", getTextContent(result))
	}
	if got := getTextContent(result); got != "No bookmarks found." {
		t.Errorf("got %q", got)
	}
}

func TestListBookmarksInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"bad date", map[string]any{"since": "soon"}, "invalid date"},
		{"reversed", map[string]any{"since": "2026-02-10", "until": "2026-02-01"}, "is after"},
		{"bad format", map[string]any{"format": "xml"}, "unsupported format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newToolServer(t, &fakeBookmarks{}, &fakeResolver{})
			result := callTool(t, s, "list_bookmarks", tt.args)
			if !result.IsError {
				t.Fatal("expected error")
			}
			if !strings.Contains(getTextContent(result), tt.want) {
				t.Errorf("error %q does not contain %q", getTextContent(result), tt.want)
			}
		})
	}
}

func TestListBookmarksRateLimited(t *testing.T) {
	client := &fakeBookmarks{err: &xapi.RateLimitError{Reset: "1700000000"}}
	s := newToolServer(t, client, &fakeResolver{})

	result := callTool(t, s, "list_bookmarks", map[string]any{})
	if !result.IsError {
		t.Fatal("expected error")
	}
	if !strings.Contains(getTextContent(result), "try again later") {
		t.Errorf("missing retry hint: %s", getTextContent(result))
	}
}

func TestAddBookmarkFromURL(t *testing.T) {
	client := &fakeBookmarks{}
	s := newToolServer(t, client, &fakeResolver{})

	result := callTool(t, s, "add_bookmark", map[string]string{
		"tweet": "https://x.com/someone/status/1234567890",
	})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", getTextContent(result))
	}
	if len(client.added) != 1 || client.added[0] != "1234567890" {
		t.Errorf("added = %v", client.added)
	}
	if !strings.Contains(getTextContent(result), "bookmarked: true") {
		t.Errorf("unexpected text: %s", getTextContent(result))
	}
}

func TestRemoveBookmark(t *testing.T) {
	client := &fakeBookmarks{}
	s := newToolServer(t, client, &fakeResolver{})

	result := callTool(t, s, "remove_bookmark", map[string]string{"tweet": "42"})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", getTextContent(result))
	}
	if len(client.removed) != 1 || client.removed[0] != "42" {
		t.Errorf("removed = %v", client.removed)
	}
	if !strings.Contains(getTextContent(result), "bookmarked: false") {
		t.Errorf("unexpected text: %s", getTextContent(result))
	}
}

func TestChangeBookmarkValidation(t *testing.T) {
	tests := []struct {
		name  string
		tweet string
		want  string
	}{
		{"empty", "", "tweet is required"},
		{"not an id", "hello", "invalid tweet ID or URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeBookmarks{}
			s := newToolServer(t, client, &fakeResolver{})
			result := callTool(t, s, "add_bookmark", map[string]string{"tweet": tt.tweet})
			if !result.IsError {
				t.Fatal("expected error")
			}
			if !strings.Contains(getTextContent(result), tt.want) {
				t.Errorf("error %q does not contain %q", getTextContent(result), tt.want)
			}
			if len(client.added) != 0 {
				t.Error("client should not be called on invalid input")
			}
		})
	}
}
