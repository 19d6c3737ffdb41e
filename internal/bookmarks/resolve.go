// ABOUTME: Date-filtered bookmark listing: sync, persist, filter, then batch-fetch missing bodies.
// ABOUTME: Failed batches are dropped so a partial result is returned instead of an error.
package bookmarks

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/2389-research/xbm/internal/models"
)

// DefaultBatchSize matches the tweet lookup endpoint's id limit.
const DefaultBatchSize = 100

// Resolver answers "bookmarks first seen between start and end" queries.
type Resolver struct {
	syncer    *Syncer
	tweets    TweetSource
	store     IndexStore
	batchSize int
	log       *slog.Logger

	tracer         trace.Tracer
	cntBatchOK     metric.Int64Counter
	cntBatchFailed metric.Int64Counter
}

// NewResolver creates a Resolver. The syncer's clock and logger are shared.
func NewResolver(syncer *Syncer, tweets TweetSource, store IndexStore) *Resolver {
	return &Resolver{
		syncer:         syncer,
		tweets:         tweets,
		store:          store,
		batchSize:      DefaultBatchSize,
		log:            syncer.log,
		tracer:         syncer.tracer,
		cntBatchOK:     newCounter(syncer.log, metricBatchFetched, "Number of reconciliation batches fetched"),
		cntBatchFailed: newCounter(syncer.log, metricBatchFailed, "Number of reconciliation batches dropped after an error"),
	}
}

// batchResult is the outcome of fetching one batch of missing ids.
type batchResult struct {
	ids  []string
	page *models.Page
	err  error
}

// Resolve syncs the index, saves it, and returns every bookmark first seen
// within [start, end], newest first. A sync error is returned after the
// partial index has been saved. Batch lookup failures are not returned.
func (r *Resolver) Resolve(ctx context.Context, start, end models.Date) (*models.Page, error) {
	ctx, span := r.tracer.Start(ctx, spanResolve)
	defer span.End()

	synced, syncErr := r.syncer.Sync(ctx, r.store.Load())
	if err := r.store.Save(synced.Index); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("saving bookmark index: %w", err)
	}
	if syncErr != nil {
		span.RecordError(syncErr)
		return nil, syncErr
	}

	result := &models.Page{Data: []models.Tweet{}, Includes: synced.Includes.Clone()}

	wanted := FilterByDate(synced.Index, start, end)
	if len(wanted) == 0 {
		span.SetAttributes(attribute.Int("resolve.wanted", 0))
		return result, nil
	}

	var missing []string
	for _, id := range wanted {
		if tw, ok := synced.Tweets[id]; ok {
			result.Data = append(result.Data, tw)
			continue
		}
		missing = append(missing, id)
	}

	for _, br := range r.fetchBatches(ctx, missing) {
		if br.err != nil {
			r.log.Debug("skipping failed bookmark batch", "ids", len(br.ids), "error", br.err)
			r.cntBatchFailed.Add(ctx, 1)
			continue
		}
		r.cntBatchOK.Add(ctx, 1)
		result.Data = append(result.Data, br.page.Data...)
		result.Includes.Merge(br.page.Includes)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Data = sortTweetsNewestFirst(result.Data)
	result.Meta.ResultCount = len(result.Data)

	span.SetAttributes(
		attribute.Int("resolve.wanted", len(wanted)),
		attribute.Int("resolve.missing", len(missing)),
		attribute.Int("resolve.returned", len(result.Data)),
	)
	return result, nil
}

// fetchBatches looks up ids in chunks of r.batchSize, one result per chunk.
func (r *Resolver) fetchBatches(ctx context.Context, ids []string) []batchResult {
	var results []batchResult
	for start := 0; start < len(ids); start += r.batchSize {
		end := min(start+r.batchSize, len(ids))
		batch := ids[start:end]

		page, err := r.tweets.FetchTweetsByIDs(ctx, batch)
		if err == nil && page == nil {
			err = fmt.Errorf("empty response for %d ids", len(batch))
		}
		results = append(results, batchResult{ids: batch, page: page, err: err})
	}
	return results
}

// sortTweetsNewestFirst orders tweets by descending id and drops repeats.
func sortTweetsNewestFirst(tweets []models.Tweet) []models.Tweet {
	slices.SortStableFunc(tweets, func(a, b models.Tweet) int {
		return compareIDs(b.ID, a.ID)
	})
	return slices.CompactFunc(tweets, func(a, b models.Tweet) bool {
		return a.ID == b.ID
	})
}
