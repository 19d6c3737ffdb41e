// ABOUTME: Consumer-side interfaces for the bookmark sync and reconciliation engine.
// ABOUTME: Implemented by the X API client and the local index store.

// Package bookmarks mirrors the user's remote bookmark collection into a small
// local index of first-seen dates and answers date-range queries from it.
//
// The package contains three main components:
//
//   - [Syncer] walks the remote collection newest-first and records ids it
//     has not seen before.
//   - [FilterByDate] selects ids first seen within a closed date interval.
//   - [Resolver] runs a sync, persists the index, and fetches bodies for
//     matching ids that the sync did not return.
package bookmarks

import (
	"context"

	"github.com/2389-research/xbm/internal/models"
	"github.com/2389-research/xbm/internal/storage"
)

// PageSource fetches pages of the remote bookmark collection.
// Implemented by [xapi.Client].
type PageSource interface {
	FetchBookmarkPage(ctx context.Context, pageSize int, cursor string) (*models.Page, error)
}

// TweetSource looks up tweets by id in batches.
// Implemented by [xapi.Client].
type TweetSource interface {
	FetchTweetsByIDs(ctx context.Context, ids []string) (*models.Page, error)
}

// IndexStore loads and persists the local bookmark index.
// Implemented by [storage.IndexStore].
type IndexStore interface {
	Load() storage.Index
	Save(idx storage.Index) error
}
