// ABOUTME: Tab-separated rendering for piping into other tools.
// ABOUTME: Prints a header row then one tweet per line; nested fields are compact JSON.
package format

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/2389-research/xbm/internal/models"
)

type column struct {
	name    string
	value   func(models.Tweet) any
	present func(models.Tweet) bool
}

func always(models.Tweet) bool { return true }

// allColumns lists tweet fields in API order.
var allColumns = []column{
	{"id", func(t models.Tweet) any { return t.ID }, always},
	{"text", func(t models.Tweet) any { return t.Text }, always},
	{"author_id", func(t models.Tweet) any { return t.AuthorID },
		func(t models.Tweet) bool { return t.AuthorID != "" }},
	{"created_at", func(t models.Tweet) any { return t.CreatedAt },
		func(t models.Tweet) bool { return t.CreatedAt != "" }},
	{"conversation_id", func(t models.Tweet) any { return t.ConversationID },
		func(t models.Tweet) bool { return t.ConversationID != "" }},
	{"lang", func(t models.Tweet) any { return t.Lang },
		func(t models.Tweet) bool { return t.Lang != "" }},
	{"public_metrics", func(t models.Tweet) any { return t.PublicMetrics },
		func(t models.Tweet) bool { return t.PublicMetrics != nil }},
	{"entities", func(t models.Tweet) any { return t.Entities },
		func(t models.Tweet) bool { return t.Entities != nil }},
	{"note_tweet", func(t models.Tweet) any { return t.NoteTweet },
		func(t models.Tweet) bool { return t.NoteTweet != nil }},
	{"article", func(t models.Tweet) any { return t.Article },
		func(t models.Tweet) bool { return t.Article != nil }},
	{"attachments", func(t models.Tweet) any { return t.Attachments },
		func(t models.Tweet) bool { return t.Attachments != nil }},
	{"referenced_tweets", func(t models.Tweet) any { return t.ReferencedTweets },
		func(t models.Tweet) bool { return len(t.ReferencedTweets) > 0 }},
	{"edit_history_tweet_ids", func(t models.Tweet) any { return t.EditHistoryTweetIDs },
		func(t models.Tweet) bool { return len(t.EditHistoryTweetIDs) > 0 }},
}

var defaultColumns = []string{"id", "author_id", "text", "created_at"}

// plainColumns picks the columns present in first. Without verbose only the
// default set is used, in its own order.
func plainColumns(first models.Tweet, verbose bool) []column {
	var present []column
	for _, c := range allColumns {
		if c.present(first) {
			present = append(present, c)
		}
	}
	if verbose {
		return present
	}

	var cols []column
	for _, name := range defaultColumns {
		for _, c := range present {
			if c.name == name {
				cols = append(cols, c)
			}
		}
	}
	return cols
}

func writePlain(w io.Writer, tweets []models.Tweet, verbose bool) error {
	if len(tweets) == 0 {
		return nil
	}
	cols := plainColumns(tweets[0], verbose)

	var b strings.Builder
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	b.WriteString(strings.Join(names, "\t"))
	b.WriteString("\n")

	for _, t := range tweets {
		vals := make([]string, len(cols))
		for i, c := range cols {
			vals[i] = cell(c.value(t))
		}
		b.WriteString(strings.Join(vals, "\t"))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

var cellEscaper = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ")

// cell renders one TSV field. Tabs and newlines inside text become spaces so
// each tweet stays on one row.
func cell(v any) string {
	if s, ok := v.(string); ok {
		return cellEscaper.Replace(s)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
