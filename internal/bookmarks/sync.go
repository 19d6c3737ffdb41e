// ABOUTME: Sync engine that pages through remote bookmarks and stamps new ids with today's date.
// ABOUTME: Stops on an empty page, an all-known page, a missing cursor, or the page ceiling.
package bookmarks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/2389-research/xbm/internal/models"
	"github.com/2389-research/xbm/internal/storage"
)

const (
	// DefaultPageSize is the number of bookmarks requested per page.
	DefaultPageSize = 100

	// DefaultMaxPages bounds the number of page fetches in one sync.
	DefaultMaxPages = 15
)

const (
	otelScope          = "xbm/bookmarks"
	spanSync           = "bookmarks.sync"
	spanResolve        = "bookmarks.resolve"
	metricPages        = "xbm.sync.pages"
	metricNewIDs       = "xbm.sync.ids.new"
	metricBatchFetched = "xbm.reconcile.batches.fetched"
	metricBatchFailed  = "xbm.reconcile.batches.failed"
)

// StopReason records why a sync stopped paging.
type StopReason string

const (
	StopEmptyPage StopReason = "empty_page"
	StopAllKnown  StopReason = "all_known"
	StopNoCursor  StopReason = "no_cursor"
	StopCeiling   StopReason = "page_ceiling"
	StopError     StopReason = "error"
)

// SyncResult is the outcome of one sync pass. Index always reflects every
// page that was fully processed, even when Sync returns an error.
type SyncResult struct {
	Index    storage.Index
	Tweets   map[string]models.Tweet
	Includes models.Includes
	Pages    int
	Added    int
	Stopped  StopReason
}

// Syncer walks the remote bookmark collection and updates a local index.
type Syncer struct {
	source   PageSource
	pageSize int
	maxPages int
	now      func() time.Time
	log      *slog.Logger

	// OTel instruments are always non-nil (no-op when telemetry is disabled).
	tracer   trace.Tracer
	cntPages metric.Int64Counter
	cntNew   metric.Int64Counter
}

// SyncerOption configures optional Syncer behaviour.
type SyncerOption func(*Syncer)

// WithPageSize overrides DefaultPageSize. Values outside 1..100 are ignored.
func WithPageSize(n int) SyncerOption {
	return func(s *Syncer) {
		if n >= 1 && n <= 100 {
			s.pageSize = n
		}
	}
}

// WithMaxPages overrides DefaultMaxPages. Non-positive values are ignored.
func WithMaxPages(n int) SyncerOption {
	return func(s *Syncer) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// WithClock sets the time source used for first-seen dates.
func WithClock(now func() time.Time) SyncerOption {
	return func(s *Syncer) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SyncerOption {
	return func(s *Syncer) {
		s.log = l
	}
}

// NewSyncer creates a Syncer reading from source.
func NewSyncer(source PageSource, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		source:   source,
		pageSize: DefaultPageSize,
		maxPages: DefaultMaxPages,
		now:      time.Now,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.tracer = otel.Tracer(otelScope)
	s.cntPages = newCounter(s.log, metricPages, "Number of bookmark pages fetched during sync")
	s.cntNew = newCounter(s.log, metricNewIDs, "Number of bookmark ids seen for the first time")
	return s
}

// Sync fetches pages until it reaches already-known bookmarks. The input index
// is not modified; the updated copy is returned in SyncResult.Index. On a page
// fetch error the result still carries the gains from earlier pages.
func (s *Syncer) Sync(ctx context.Context, idx storage.Index) (SyncResult, error) {
	ctx, span := s.tracer.Start(ctx, spanSync)
	defer span.End()

	today := models.Today(s.now)
	res := SyncResult{
		Index:  idx.Clone(),
		Tweets: make(map[string]models.Tweet),
	}

	cursor := ""
	for res.Pages < s.maxPages {
		page, err := s.source.FetchBookmarkPage(ctx, s.pageSize, cursor)
		if err != nil {
			res.Stopped = StopError
			err = fmt.Errorf("fetching bookmarks page %d: %w", res.Pages+1, err)
			s.record(ctx, span, res, err)
			return res, err
		}
		res.Pages++

		if len(page.Data) == 0 {
			res.Stopped = StopEmptyPage
			break
		}

		res.Includes.Merge(page.Includes)

		allKnown := true
		for _, tw := range page.Data {
			res.Tweets[tw.ID] = tw
			if _, known := res.Index.KnownIDs[tw.ID]; known {
				continue
			}
			res.Index.KnownIDs[tw.ID] = today
			res.Added++
			allKnown = false
		}

		s.log.Debug("sync page processed", "page", res.Pages, "items", len(page.Data), "added", res.Added)

		if allKnown {
			res.Stopped = StopAllKnown
			break
		}
		if page.Meta.NextToken == "" {
			res.Stopped = StopNoCursor
			break
		}
		cursor = page.Meta.NextToken
	}
	if res.Stopped == "" {
		res.Stopped = StopCeiling
		s.log.Debug("sync stopped at page ceiling", "max_pages", s.maxPages)
	}

	s.record(ctx, span, res, nil)
	return res, nil
}

func (s *Syncer) record(ctx context.Context, span trace.Span, res SyncResult, err error) {
	if res.Pages > 0 {
		s.cntPages.Add(ctx, int64(res.Pages))
	}
	if res.Added > 0 {
		s.cntNew.Add(ctx, int64(res.Added))
	}
	span.SetAttributes(
		attribute.Int("sync.pages", res.Pages),
		attribute.Int("sync.added", res.Added),
		attribute.String("sync.stopped", string(res.Stopped)),
	)
	if err != nil {
		span.RecordError(err)
	}
}

func newCounter(logger *slog.Logger, name, desc string) metric.Int64Counter {
	c, err := otel.Meter(otelScope).Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		logger.Error("creating OTel counter", "name", name, "error", err)
		return noop.Int64Counter{}
	}
	return c
}
