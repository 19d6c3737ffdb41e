// ABOUTME: Parsing of user-supplied query values: --since/--until dates and tweet ids or URLs.
// ABOUTME: Shared by the CLI and the MCP tools.
package bookmarks

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/2389-research/xbm/internal/models"
)

const maxTweetRefLen = 500

var (
	statusURLPattern = regexp.MustCompile(`(?:twitter\.com|x\.com)/([a-zA-Z0-9_]{1,15})/status/(\d{1,20})`)
	bareIDPattern    = regexp.MustCompile(`^\d{1,20}$`)
)

// ErrInvalidDateRange is returned when --since falls after --until.
var ErrInvalidDateRange = errors.New("invalid date range")

// DateRange is a closed interval of first-seen dates.
type DateRange struct {
	Start models.Date
	End   models.Date
}

// ParseDateValue accepts "today", "yesterday", or YYYY-MM-DD relative to today.
func ParseDateValue(value string, today models.Date) (models.Date, error) {
	trimmed := strings.TrimSpace(value)
	switch strings.ToLower(trimmed) {
	case "today":
		return today, nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	d, err := models.ParseDate(trimmed)
	if err != nil {
		return models.Date{}, fmt.Errorf("invalid date: %q. Use 'today', 'yesterday', or YYYY-MM-DD", value)
	}
	return d, nil
}

// ResolveDateRange turns optional since/until values into a DateRange.
// It returns ok=false when both are empty. A missing since opens the range at
// models.MinDate; a missing until closes it at today.
func ResolveDateRange(since, until string, today models.Date) (DateRange, bool, error) {
	if since == "" && until == "" {
		return DateRange{}, false, nil
	}

	r := DateRange{Start: models.MinDate, End: today}
	if since != "" {
		d, err := ParseDateValue(since, today)
		if err != nil {
			return DateRange{}, false, err
		}
		r.Start = d
	}
	if until != "" {
		d, err := ParseDateValue(until, today)
		if err != nil {
			return DateRange{}, false, err
		}
		r.End = d
	}
	if r.Start.After(r.End) {
		return DateRange{}, false, fmt.Errorf("%w: --since (%s) is after --until (%s)", ErrInvalidDateRange, r.Start, r.End)
	}
	return r, true, nil
}

// ParseTweetID extracts a tweet id from an x.com or twitter.com status URL or
// a bare numeric id.
func ParseTweetID(input string) (string, error) {
	if len(input) > maxTweetRefLen {
		return "", errors.New("input too long for tweet ID/URL")
	}
	if m := statusURLPattern.FindStringSubmatch(input); m != nil {
		return m[2], nil
	}
	stripped := strings.TrimSpace(input)
	if bareIDPattern.MatchString(stripped) {
		return stripped, nil
	}
	shown := input
	if len(shown) > 100 {
		shown = shown[:100]
	}
	return "", fmt.Errorf("invalid tweet ID or URL: %s", shown)
}
