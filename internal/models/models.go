// ABOUTME: Core data models for X API v2 tweets, users, media, and response envelopes.
// ABOUTME: Mirrors the JSON shape returned by the bookmarks and tweet lookup endpoints.
package models

// Tweet is a single bookmarked post as returned by the X API.
type Tweet struct {
	ID                  string            `json:"id"`
	Text                string            `json:"text"`
	AuthorID            string            `json:"author_id,omitempty"`
	CreatedAt           string            `json:"created_at,omitempty"`
	ConversationID      string            `json:"conversation_id,omitempty"`
	Lang                string            `json:"lang,omitempty"`
	PublicMetrics       *PublicMetrics    `json:"public_metrics,omitempty"`
	Entities            *Entities         `json:"entities,omitempty"`
	NoteTweet           *NoteTweet        `json:"note_tweet,omitempty"`
	Article             *Article          `json:"article,omitempty"`
	Attachments         *Attachments      `json:"attachments,omitempty"`
	ReferencedTweets    []ReferencedTweet `json:"referenced_tweets,omitempty"`
	EditHistoryTweetIDs []string          `json:"edit_history_tweet_ids,omitempty"`
}

// PublicMetrics holds engagement counters.
type PublicMetrics struct {
	RetweetCount    int `json:"retweet_count"`
	ReplyCount      int `json:"reply_count"`
	LikeCount       int `json:"like_count"`
	QuoteCount      int `json:"quote_count"`
	BookmarkCount   int `json:"bookmark_count"`
	ImpressionCount int `json:"impression_count"`
}

// Entities holds parsed entities embedded in tweet text.
type Entities struct {
	URLs []URLEntity `json:"urls,omitempty"`
}

// URLEntity is a shortened t.co link with its expansion and optional preview.
type URLEntity struct {
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url,omitempty"`
	UnwoundURL  string `json:"unwound_url,omitempty"`
	DisplayURL  string `json:"display_url,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// NoteTweet carries the full text of long-form posts.
type NoteTweet struct {
	Text string `json:"text"`
}

// Article carries the title of an X article.
type Article struct {
	Title string `json:"title"`
}

// Attachments references media attached to a tweet.
type Attachments struct {
	MediaKeys []string `json:"media_keys,omitempty"`
}

// ReferencedTweet points at a replied-to, quoted, or retweeted post.
type ReferencedTweet struct {
	Type string `json:"type"` // "replied_to", "quoted", or "retweeted"
	ID   string `json:"id"`
}

// User is an account referenced from the includes block.
type User struct {
	ID              string `json:"id"`
	Name            string `json:"name,omitempty"`
	Username        string `json:"username,omitempty"`
	Verified        bool   `json:"verified,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// Media is an attachment referenced from the includes block.
type Media struct {
	MediaKey        string `json:"media_key"`
	Type            string `json:"type,omitempty"`
	URL             string `json:"url,omitempty"`
	PreviewImageURL string `json:"preview_image_url,omitempty"`
}

// Meta holds pagination details of a paged response.
type Meta struct {
	ResultCount int    `json:"result_count,omitempty"`
	NextToken   string `json:"next_token,omitempty"`
}

// APIProblem is a partial error reported alongside data, e.g. a deleted tweet in a lookup.
type APIProblem struct {
	Title      string `json:"title,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
	Type       string `json:"type,omitempty"`
	ResourceID string `json:"resource_id,omitempty"`
}

// Page is one response from the bookmarks or tweet lookup endpoints.
type Page struct {
	Data     []Tweet      `json:"data"`
	Includes Includes     `json:"includes"`
	Meta     Meta         `json:"meta"`
	Errors   []APIProblem `json:"errors,omitempty"`
}

// DisplayText returns the display text, preferring the long-form note text when present.
func (t Tweet) DisplayText() string {
	if t.NoteTweet != nil && t.NoteTweet.Text != "" {
		return t.NoteTweet.Text
	}
	return t.Text
}

// PrimaryReference returns the first referenced tweet, if any.
func (t Tweet) PrimaryReference() (ReferencedTweet, bool) {
	if len(t.ReferencedTweets) == 0 || t.ReferencedTweets[0].ID == "" {
		return ReferencedTweet{}, false
	}
	return t.ReferencedTweets[0], true
}
