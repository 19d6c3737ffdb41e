// ABOUTME: JSON-file store for the local bookmark index of known ids and first-seen dates.
// ABOUTME: Loads leniently, prunes by retention on every save, and writes atomically with 0600.
package storage

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/2389-research/xbm/internal/models"
)

// DefaultRetentionDays bounds how long an id is remembered after it was first seen.
const DefaultRetentionDays = 90

// Index maps bookmark ids to the date they were first observed by a sync.
type Index struct {
	KnownIDs map[string]models.Date
}

// NewIndex returns an empty index.
func NewIndex() Index {
	return Index{KnownIDs: make(map[string]models.Date)}
}

// Clone returns a deep copy of idx.
func (idx Index) Clone() Index {
	out := Index{KnownIDs: make(map[string]models.Date, len(idx.KnownIDs))}
	for id, d := range idx.KnownIDs {
		out.KnownIDs[id] = d
	}
	return out
}

// Len returns the number of known ids.
func (idx Index) Len() int {
	return len(idx.KnownIDs)
}

// Prune returns a copy of idx keeping only entries first seen on or after
// today minus retentionDays.
func Prune(idx Index, today models.Date, retentionDays int) Index {
	cutoff := today.AddDays(-retentionDays)
	out := Index{KnownIDs: make(map[string]models.Date, len(idx.KnownIDs))}
	for id, d := range idx.KnownIDs {
		if d.Before(cutoff) {
			continue
		}
		out.KnownIDs[id] = d
	}
	return out
}

// indexFile is the on-disk JSON layout.
type indexFile struct {
	KnownIDs map[string]string `json:"known_ids"`
}

// IndexStore persists an Index to a single JSON file.
type IndexStore struct {
	path          string
	retentionDays int
	now           func() time.Time
	encode        func(w io.Writer, v any) error
}

// IndexStoreOption configures optional IndexStore behaviour.
type IndexStoreOption func(*IndexStore)

// WithClock sets the time source used for pruning.
func WithClock(now func() time.Time) IndexStoreOption {
	return func(s *IndexStore) {
		s.now = now
	}
}

// WithRetentionDays overrides DefaultRetentionDays. Non-positive values are ignored.
func WithRetentionDays(days int) IndexStoreOption {
	return func(s *IndexStore) {
		if days > 0 {
			s.retentionDays = days
		}
	}
}

// NewIndexStore creates a store backed by the file at path.
func NewIndexStore(path string, opts ...IndexStoreOption) *IndexStore {
	s := &IndexStore{
		path:          path,
		retentionDays: DefaultRetentionDays,
		now:           time.Now,
		encode: func(w io.Writer, v any) error {
			return json.NewEncoder(w).Encode(v)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *IndexStore) Path() string {
	return s.path
}

// Load reads the index from disk. A missing, unreadable, or malformed file
// yields an empty index; entries with unparseable dates are dropped.
func (s *IndexStore) Load() Index {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return NewIndex()
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return NewIndex()
	}
	raw, ok := top["known_ids"]
	if !ok {
		return NewIndex()
	}
	var known map[string]string
	if err := json.Unmarshal(raw, &known); err != nil || known == nil {
		return NewIndex()
	}

	idx := Index{KnownIDs: make(map[string]models.Date, len(known))}
	for id, value := range known {
		d, err := models.ParseDate(value)
		if err != nil {
			continue
		}
		idx.KnownIDs[id] = d
	}
	return idx
}

// Prune drops entries older than the store's retention window relative to today.
func (s *IndexStore) Prune(idx Index) Index {
	return Prune(idx, models.Today(s.now), s.retentionDays)
}

// Save prunes idx and atomically replaces the file with owner-only permissions.
// On failure the previously saved file is left untouched.
func (s *IndexStore) Save(idx Index) error {
	pruned := s.Prune(idx)

	file := indexFile{KnownIDs: make(map[string]string, len(pruned.KnownIDs))}
	for id, d := range pruned.KnownIDs {
		file.KnownIDs[id] = d.String()
	}

	return atomicWrite(s.path, 0o600, func(w io.Writer) error {
		return s.encode(w, file)
	})
}
