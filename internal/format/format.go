// ABOUTME: Output rendering for bookmark pages in human, JSON, TSV, and markdown modes.
// ABOUTME: Resolves authors, expands t.co links, and labels referenced tweets from includes.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/2389-research/xbm/internal/models"
)

// Mode selects an output style.
type Mode int

const (
	ModeHuman Mode = iota
	ModeJSON
	ModePlain
	ModeMarkdown
)

// String returns the flag name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeJSON:
		return "json"
	case ModePlain:
		return "plain"
	case ModeMarkdown:
		return "markdown"
	default:
		return "human"
	}
}

// ModeFromFlags picks a mode from the global output flags. JSON wins over
// plain, which wins over markdown.
func ModeFromFlags(jsonOut, plain, markdown bool) Mode {
	switch {
	case jsonOut:
		return ModeJSON
	case plain:
		return ModePlain
	case markdown:
		return ModeMarkdown
	default:
		return ModeHuman
	}
}

// Printer renders results to out. Hints such as the next-page token go to
// hints in human mode so they never pollute piped output.
type Printer struct {
	out     io.Writer
	hints   io.Writer
	mode    Mode
	verbose bool
}

// New creates a Printer.
func New(out, hints io.Writer, mode Mode, verbose bool) *Printer {
	return &Printer{out: out, hints: hints, mode: mode, verbose: verbose}
}

// Mode returns the printer's output mode.
func (p *Printer) Mode() Mode { return p.mode }

// Page renders a list of tweets with their includes.
func (p *Printer) Page(page *models.Page, title string) error {
	if page == nil {
		page = &models.Page{}
	}
	if page.Data == nil {
		clone := *page
		clone.Data = []models.Tweet{}
		page = &clone
	}

	switch p.mode {
	case ModeJSON:
		if p.verbose {
			return p.writeJSON(page)
		}
		return p.writeJSON(page.Data)
	case ModePlain:
		return writePlain(p.out, page.Data, p.verbose)
	case ModeMarkdown:
		return writeMarkdown(p.out, page, title, p.verbose)
	default:
		return p.writeHuman(page, title)
	}
}

// BookmarkStatus renders the outcome of an add or remove call.
func (p *Printer) BookmarkStatus(tweetID string, bookmarked bool, title string) error {
	data := map[string]bool{"bookmarked": bookmarked}

	switch p.mode {
	case ModeJSON:
		if p.verbose {
			return p.writeJSON(map[string]any{"data": data})
		}
		return p.writeJSON(data)
	case ModePlain:
		_, err := fmt.Fprintf(p.out, "bookmarked\t%t\n", bookmarked)
		return err
	case ModeMarkdown:
		_, err := fmt.Fprintf(p.out, "## %s\n\nTweet `%s`: bookmarked = %t\n", title, tweetID, bookmarked)
		return err
	default:
		body := fmt.Sprintf("Tweet %s\nbookmarked: %t", tweetID, bookmarked)
		_, err := fmt.Fprintln(p.out, panel(title, body))
		return err
	}
}

// Field is one labelled value in a summary.
type Field struct {
	Key   string
	Value any
}

// Summary renders labelled values such as sync statistics.
func (p *Printer) Summary(title string, fields []Field) error {
	switch p.mode {
	case ModeJSON:
		obj := make(map[string]any, len(fields))
		for _, f := range fields {
			obj[f.Key] = f.Value
		}
		return p.writeJSON(obj)
	case ModePlain:
		var b strings.Builder
		for _, f := range fields {
			fmt.Fprintf(&b, "%s\t%v\n", f.Key, f.Value)
		}
		_, err := io.WriteString(p.out, b.String())
		return err
	case ModeMarkdown:
		var b strings.Builder
		fmt.Fprintf(&b, "## %s\n\n", title)
		for _, f := range fields {
			fmt.Fprintf(&b, "- **%s**: %v\n", f.Key, f.Value)
		}
		_, err := io.WriteString(p.out, b.String())
		return err
	default:
		lines := make([]string, len(fields))
		for i, f := range fields {
			lines[i] = fmt.Sprintf("%s: %v", f.Key, f.Value)
		}
		_, err := fmt.Fprintln(p.out, panel(title, strings.Join(lines, "\n")))
		return err
	}
}

func (p *Printer) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	_, err = fmt.Fprintln(p.out, string(data))
	return err
}

// Author returns "@username" for authorID when includes carries the user,
// the raw id when it does not, and "?" when the id is empty.
func Author(authorID string, inc models.Includes) string {
	if authorID == "" {
		return "?"
	}
	if u, ok := inc.UserByID(authorID); ok {
		if u.Username == "" {
			return "@?"
		}
		return "@" + u.Username
	}
	return authorID
}

// Preview is link card data shown under a tweet.
type Preview struct {
	URL         string
	Title       string
	Description string
}

// ExpandText returns the tweet's display text with t.co links replaced by
// their expansions, and the link previews found in its entities. An article
// title, when present, is the first preview.
func ExpandText(t models.Tweet) (string, []Preview) {
	text := t.DisplayText()
	var previews []Preview

	if t.Entities != nil {
		for _, u := range t.Entities.URLs {
			expanded := u.UnwoundURL
			if expanded == "" {
				expanded = u.ExpandedURL
			}
			if u.URL != "" && expanded != "" {
				text = strings.ReplaceAll(text, u.URL, expanded)
			}
			if u.Title != "" || u.Description != "" {
				previews = append(previews, Preview{URL: expanded, Title: u.Title, Description: u.Description})
			}
		}
	}

	if t.Article != nil && t.Article.Title != "" {
		previews = append([]Preview{{Title: t.Article.Title}}, previews...)
	}
	return text, previews
}

// Reference returns the label and body of the tweet's primary referenced
// tweet when includes carries it.
func Reference(t models.Tweet, inc models.Includes) (string, models.Tweet, bool) {
	ref, ok := t.PrimaryReference()
	if !ok {
		return "", models.Tweet{}, false
	}
	refTweet, ok := inc.TweetByID(ref.ID)
	if !ok {
		return "", models.Tweet{}, false
	}
	return referenceLabel(ref.Type), refTweet, true
}

func referenceLabel(kind string) string {
	switch kind {
	case "quoted":
		return "Quote of"
	case "retweeted":
		return "Retweet of"
	case "replied_to":
		return "Reply to"
	default:
		return kind
	}
}

// metricParts lists public metrics in API order as "name: value".
func metricParts(m *models.PublicMetrics) []string {
	if m == nil {
		return nil
	}
	return []string{
		fmt.Sprintf("retweet: %d", m.RetweetCount),
		fmt.Sprintf("reply: %d", m.ReplyCount),
		fmt.Sprintf("like: %d", m.LikeCount),
		fmt.Sprintf("quote: %d", m.QuoteCount),
		fmt.Sprintf("bookmark: %d", m.BookmarkCount),
		fmt.Sprintf("impression: %d", m.ImpressionCount),
	}
}
