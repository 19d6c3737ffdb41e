// ABOUTME: HTTP client for the X API v2 bookmark endpoints.
// ABOUTME: Fetches bookmark pages and tweet batches, and adds or removes bookmarks.
package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/2389-research/xbm/internal/models"
)

const (
	// DefaultBaseURL is the X API v2 root.
	DefaultBaseURL = "https://api.x.com/2"

	// DefaultTimeout bounds every remote call.
	DefaultTimeout = 30 * time.Second

	// MaxPageSize is the largest page the bookmarks endpoint returns.
	MaxPageSize = 100

	// MaxBatchSize is the largest id list the tweet lookup endpoint accepts.
	MaxBatchSize = 100
)

const (
	tweetFields = "created_at,public_metrics,author_id,conversation_id,entities,lang,note_tweet,referenced_tweets"
	expansions  = "author_id,referenced_tweets.id,referenced_tweets.id.author_id,attachments.media_keys"
	userFields  = "name,username,verified,profile_image_url"
	mediaFields = "url,preview_image_url,type"
)

// HTTPClient is the subset of *http.Client used by Client. The caller is
// expected to supply a client that attaches the OAuth bearer token.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the X API on behalf of the authenticated user.
type Client struct {
	baseURL string
	http    HTTPClient
	limiter *rate.Limiter
	log     *slog.Logger

	mu     sync.Mutex
	userID string
}

// Option configures optional Client behaviour.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithLimiter replaces the default request pacing.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithUserID presets the authenticated user id, skipping the /users/me lookup.
func WithUserID(id string) Option {
	return func(c *Client) {
		c.userID = id
	}
}

// New creates a Client that sends requests through httpClient.
func New(httpClient HTTPClient, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// meResponse is the envelope returned by GET /users/me.
type meResponse struct {
	Data models.User `json:"data"`
}

// bookmarkRequest is the JSON body sent to POST /users/{id}/bookmarks.
type bookmarkRequest struct {
	TweetID string `json:"tweet_id"`
}

// bookmarkResponse is the envelope returned by the bookmark mutation endpoints.
type bookmarkResponse struct {
	Data struct {
		Bookmarked bool `json:"bookmarked"`
	} `json:"data"`
}

// Me returns the authenticated user's id, caching it for the client's lifetime.
func (c *Client) Me(ctx context.Context) (string, error) {
	c.mu.Lock()
	cached := c.userID
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	var resp meResponse
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &resp); err != nil {
		return "", err
	}
	if resp.Data.ID == "" {
		return "", &APIError{StatusCode: http.StatusOK, Message: "response did not include a user id"}
	}

	c.mu.Lock()
	c.userID = resp.Data.ID
	c.mu.Unlock()
	return resp.Data.ID, nil
}

// FetchBookmarkPage returns one page of the user's bookmarks, newest first.
// pageSize is clamped to 1..MaxPageSize; an empty cursor requests the first page.
func (c *Client) FetchBookmarkPage(ctx context.Context, pageSize int, cursor string) (*models.Page, error) {
	userID, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}

	q := expansionQuery()
	q.Set("max_results", strconv.Itoa(clamp(pageSize, 1, MaxPageSize)))
	if cursor != "" {
		q.Set("pagination_token", cursor)
	}

	var page models.Page
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/bookmarks", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchTweetsByIDs looks up to MaxBatchSize tweets by id. Extra ids are ignored.
func (c *Client) FetchTweetsByIDs(ctx context.Context, ids []string) (*models.Page, error) {
	if len(ids) == 0 {
		return &models.Page{}, nil
	}
	if len(ids) > MaxBatchSize {
		ids = ids[:MaxBatchSize]
	}

	q := expansionQuery()
	q.Set("ids", strings.Join(ids, ","))

	var page models.Page
	if err := c.do(ctx, http.MethodGet, "/tweets", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AddBookmark bookmarks tweetID for the authenticated user.
func (c *Client) AddBookmark(ctx context.Context, tweetID string) (bool, error) {
	userID, err := c.Me(ctx)
	if err != nil {
		return false, err
	}

	var resp bookmarkResponse
	body := bookmarkRequest{TweetID: tweetID}
	if err := c.do(ctx, http.MethodPost, "/users/"+url.PathEscape(userID)+"/bookmarks", nil, body, &resp); err != nil {
		return false, err
	}
	return resp.Data.Bookmarked, nil
}

// RemoveBookmark removes tweetID from the authenticated user's bookmarks.
// It reports whether the tweet is still bookmarked afterwards.
func (c *Client) RemoveBookmark(ctx context.Context, tweetID string) (bool, error) {
	userID, err := c.Me(ctx)
	if err != nil {
		return false, err
	}

	var resp bookmarkResponse
	path := "/users/" + url.PathEscape(userID) + "/bookmarks/" + url.PathEscape(tweetID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, &resp); err != nil {
		return false, err
	}
	return resp.Data.Bookmarked, nil
}

// do sends one request and decodes a successful JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("x api request failed", "method", method, "path", path, "error", err)
		return &APIError{Message: "transport error", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug("x api request", "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &RateLimitError{Reset: resp.Header.Get("x-rate-limit-reset")}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: problemMessage(respBody)}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "failed to decode response", Err: err}
	}
	return nil
}

// expansionQuery returns the field and expansion parameters shared by the
// bookmark and tweet lookup endpoints.
func expansionQuery() url.Values {
	q := url.Values{}
	q.Set("tweet.fields", tweetFields)
	q.Set("expansions", expansions)
	q.Set("user.fields", userFields)
	q.Set("media.fields", mediaFields)
	return q
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
