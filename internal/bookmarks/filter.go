// ABOUTME: Date-range selection over the local bookmark index.
// ABOUTME: Returns ids first seen within a closed interval, newest snowflake first.
package bookmarks

import (
	"slices"
	"strings"

	"github.com/2389-research/xbm/internal/models"
	"github.com/2389-research/xbm/internal/storage"
)

// FilterByDate returns every id in idx whose first-seen date lies in
// [start, end], both inclusive.
func FilterByDate(idx storage.Index, start, end models.Date) []string {
	var ids []string
	for id, seen := range idx.KnownIDs {
		if seen.Before(start) || seen.After(end) {
			continue
		}
		ids = append(ids, id)
	}
	SortNewestFirst(ids)
	return ids
}

// SortNewestFirst orders numeric snowflake ids from highest to lowest.
func SortNewestFirst(ids []string) {
	slices.SortFunc(ids, func(a, b string) int {
		return compareIDs(b, a)
	})
}

// compareIDs orders decimal id strings numerically without parsing them.
func compareIDs(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}
