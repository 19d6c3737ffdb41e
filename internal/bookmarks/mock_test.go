// ABOUTME: Test doubles for the bookmark engine: scripted page source, tweet lookup, and index store.
// ABOUTME: Records cursors and batches so tests can assert exact remote call sequences.
package bookmarks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/2389-research/xbm/internal/models"
	"github.com/2389-research/xbm/internal/storage"
)

// --- Scripted page source ----------------------------------------------------

type scriptedPages struct {
	mu      sync.Mutex
	pages   []*models.Page
	gen     func(call int) *models.Page
	failAt  int
	failErr error
	cursors []string
}

func (s *scriptedPages) FetchBookmarkPage(_ context.Context, _ int, cursor string) (*models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursors = append(s.cursors, cursor)
	call := len(s.cursors)
	if s.failErr != nil && call == s.failAt {
		return nil, s.failErr
	}
	if s.gen != nil {
		return s.gen(call), nil
	}
	if call > len(s.pages) {
		return &models.Page{}, nil
	}
	return s.pages[call-1], nil
}

func (s *scriptedPages) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cursors)
}

// page builds a bookmark page containing ids, with one author per tweet.
func page(next string, ids ...string) *models.Page {
	p := &models.Page{Meta: models.Meta{ResultCount: len(ids), NextToken: next}}
	for _, id := range ids {
		p.Data = append(p.Data, models.Tweet{ID: id, Text: "tweet " + id, AuthorID: "u" + id})
		p.Includes.Users = append(p.Includes.Users, models.User{ID: "u" + id, Username: "user" + id})
	}
	return p
}

// --- Fake tweet lookup -------------------------------------------------------

type fakeTweets struct {
	mu      sync.Mutex
	failIf  func(ids []string) error
	batches [][]string
}

func (f *fakeTweets) FetchTweetsByIDs(_ context.Context, ids []string) (*models.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.batches = append(f.batches, append([]string(nil), ids...))
	if f.failIf != nil {
		if err := f.failIf(ids); err != nil {
			return nil, err
		}
	}
	return page("", ids...), nil
}

// --- In-memory index store ---------------------------------------------------

type memStore struct {
	mu      sync.Mutex
	idx     storage.Index
	saves   int
	saveErr error
}

func newMemStore(entries map[string]string) *memStore {
	idx := storage.NewIndex()
	for id, d := range entries {
		parsed, err := models.ParseDate(d)
		if err != nil {
			panic(fmt.Sprintf("bad test date %q: %v", d, err))
		}
		idx.KnownIDs[id] = parsed
	}
	return &memStore{idx: idx}
}

func (m *memStore) Load() storage.Index {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.idx.Clone()
}

func (m *memStore) Save(idx storage.Index) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.idx = idx.Clone()
	return nil
}

// --- Helpers -----------------------------------------------------------------

func clockAt(year int, month time.Month, day int) func() time.Time {
	return func() time.Time { return time.Date(year, month, day, 9, 30, 0, 0, time.Local) }
}

func date(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
