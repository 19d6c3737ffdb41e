// ABOUTME: CLI commands for bookmark operations.
// ABOUTME: Provides list (with --since/--until date ranges), add, remove, and sync.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/2389-research/xbm/internal/bookmarks"
	"github.com/2389-research/xbm/internal/format"
	"github.com/2389-research/xbm/internal/models"
	"github.com/2389-research/xbm/internal/xapi"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your bookmarks",
	Long: `List your bookmarks, newest first.

With --since or --until, every bookmark first seen in that date range is
returned. Dates are 'today', 'yesterday', or YYYY-MM-DD.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var addCmd = &cobra.Command{
	Use:   "add <id|url>",
	Short: "Bookmark a tweet",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var removeCmd = &cobra.Command{
	Use:   "remove <id|url>",
	Short: "Remove a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Update the local first-seen index",
	Long:  "Walk recent bookmarks and record today's date for any id not seen before.",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

// Flags
var (
	listMax       int
	listSince     string
	listUntil     string
	listNextToken string
)

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(syncCmd)

	listCmd.Flags().IntVar(&listMax, "max", 10, "Max results (1-100)")
	listCmd.Flags().StringVar(&listSince, "since", "", "Start date: 'today', 'yesterday', or YYYY-MM-DD")
	listCmd.Flags().StringVar(&listUntil, "until", "", "End date: 'today', 'yesterday', or YYYY-MM-DD")
	listCmd.Flags().StringVar(&listNextToken, "next-token", "", "Continue from a previous page (ignored with --since/--until)")
}

func runList(cmd *cobra.Command, args []string) error {
	dr, ranged, err := bookmarks.ResolveDateRange(listSince, listUntil, models.Today(time.Now))
	if err != nil {
		return err
	}

	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	var page *models.Page
	if ranged {
		store, err := newIndexStore()
		if err != nil {
			return err
		}
		resolver := bookmarks.NewResolver(newSyncer(client), client, store)
		page, err = resolver.Resolve(cmd.Context(), dr.Start, dr.End)
		if err != nil {
			return fmt.Errorf("failed to list bookmarks: %w", err)
		}
	} else {
		page, err = client.FetchBookmarkPage(cmd.Context(), clampMax(listMax), listNextToken)
		if err != nil {
			return fmt.Errorf("failed to list bookmarks: %w", err)
		}
	}

	return newPrinter(cmd).Page(page, "Bookmarks")
}

func clampMax(n int) int {
	return max(1, min(n, xapi.MaxPageSize))
}

func runAdd(cmd *cobra.Command, args []string) error {
	return changeBookmark(cmd, args[0], "Bookmarked", (*xapi.Client).AddBookmark)
}

func runRemove(cmd *cobra.Command, args []string) error {
	return changeBookmark(cmd, args[0], "Unbookmarked", (*xapi.Client).RemoveBookmark)
}

func changeBookmark(cmd *cobra.Command, ref, title string,
	call func(*xapi.Client, context.Context, string) (bool, error)) error {
	id, err := bookmarks.ParseTweetID(ref)
	if err != nil {
		return err
	}

	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	bookmarked, err := call(client, cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to update bookmark: %w", err)
	}
	return newPrinter(cmd).BookmarkStatus(id, bookmarked, title)
}

func runSync(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	store, err := newIndexStore()
	if err != nil {
		return err
	}

	res, syncErr := newSyncer(client).Sync(cmd.Context(), store.Load())
	if err := store.Save(res.Index); err != nil {
		return fmt.Errorf("failed to save bookmark index: %w", err)
	}
	if syncErr != nil {
		return syncErr
	}

	return newPrinter(cmd).Summary("Sync", []format.Field{
		{Key: "pages", Value: res.Pages},
		{Key: "added", Value: res.Added},
		{Key: "tracked", Value: store.Prune(res.Index).Len()},
		{Key: "stopped", Value: string(res.Stopped)},
		{Key: "index", Value: store.Path()},
	})
}
