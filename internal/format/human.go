// ABOUTME: Human-readable rendering with lipgloss bordered panels, one per tweet.
// ABOUTME: Shows author, expanded text, link previews, references, and metrics when verbose.
package format

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/xbm/internal/models"
)

const maxPanelWidth = 80

var (
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	authorStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	previewStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
)

func (p *Printer) writeHuman(page *models.Page, title string) error {
	if len(page.Data) == 0 {
		if _, err := fmt.Fprintln(p.out, dimStyle.Render("No bookmarks found.")); err != nil {
			return err
		}
	}
	for _, t := range page.Data {
		if _, err := fmt.Fprintln(p.out, panel("Tweet "+t.ID, humanTweet(t, page.Includes, p.verbose))); err != nil {
			return err
		}
	}
	if p.verbose && page.Meta.NextToken != "" {
		_, _ = fmt.Fprintln(p.hints, dimStyle.Render("Next page: --next-token "+page.Meta.NextToken))
	}
	return nil
}

func humanTweet(t models.Tweet, inc models.Includes, verbose bool) string {
	var b strings.Builder

	b.WriteString(authorStyle.Render(Author(t.AuthorID, inc)))
	if verbose && t.CreatedAt != "" {
		b.WriteString("  ")
		b.WriteString(dimStyle.Render(t.CreatedAt))
	}

	text, previews := ExpandText(t)
	b.WriteString("\n\n")
	b.WriteString(text)

	for _, pv := range previews {
		if pv.Title != "" {
			b.WriteString("\n\n")
			b.WriteString(previewStyle.Render(pv.Title))
		}
		if pv.Description != "" {
			b.WriteString("\n")
			b.WriteString(dimStyle.Render(pv.Description))
		}
	}

	if label, ref, ok := Reference(t, inc); ok {
		refText, _ := ExpandText(ref)
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("─── %s %s ───", label, Author(ref.AuthorID, inc))))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(refText))
	}

	if verbose {
		if parts := metricParts(t.PublicMetrics); len(parts) > 0 {
			b.WriteString("\n\n")
			b.WriteString(dimStyle.Render(strings.Join(parts, " | ")))
		}
	}
	return b.String()
}

// panel draws body in a rounded border with title as its first line,
// wrapping lines wider than maxPanelWidth.
func panel(title, body string) string {
	content := titleStyle.Render(title) + "\n" + body
	style := panelStyle
	if lipgloss.Width(content) > maxPanelWidth {
		style = style.Width(maxPanelWidth)
	}
	return style.Render(content)
}
