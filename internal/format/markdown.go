// ABOUTME: Markdown rendering of bookmark pages for notes and documents.
// ABOUTME: Tweets are separated by horizontal rules; previews and references become blockquotes.
package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/2389-research/xbm/internal/models"
)

func writeMarkdown(w io.Writer, page *models.Page, title string, verbose bool) error {
	var b strings.Builder

	if len(page.Data) > 0 {
		if title != "" {
			fmt.Fprintf(&b, "## %s\n\n", title)
		}
		for i, t := range page.Data {
			if i > 0 {
				b.WriteString("\n---\n\n")
			}
			markdownTweet(&b, t, page.Includes, verbose)
		}
	}

	if verbose && page.Meta.NextToken != "" {
		fmt.Fprintf(&b, "\n*Next page: `--next-token %s`*\n", page.Meta.NextToken)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func markdownTweet(b *strings.Builder, t models.Tweet, inc models.Includes, verbose bool) {
	fmt.Fprintf(b, "**%s**\n", Author(t.AuthorID, inc))
	if verbose && t.CreatedAt != "" {
		fmt.Fprintf(b, "*%s*\n", t.CreatedAt)
	}

	text, previews := ExpandText(t)
	fmt.Fprintf(b, "\n%s\n\n", text)

	for _, pv := range previews {
		if pv.Title != "" {
			fmt.Fprintf(b, "> **%s**\n", pv.Title)
		}
		if pv.Description != "" {
			fmt.Fprintf(b, "> %s\n", pv.Description)
		}
		b.WriteString("\n")
	}

	if label, ref, ok := Reference(t, inc); ok {
		refText, _ := ExpandText(ref)
		fmt.Fprintf(b, "> **%s %s**: %s\n\n", label, Author(ref.AuthorID, inc), refText)
	}

	if verbose {
		if parts := metricParts(t.PublicMetrics); len(parts) > 0 {
			fmt.Fprintf(b, "%s\n\n", strings.Join(parts, " | "))
		}
	}
	fmt.Fprintf(b, "ID: `%s`\n", t.ID)
}
