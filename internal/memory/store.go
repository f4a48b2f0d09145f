// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memory

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store defaults, used when Options fields are left zero.
const (
	DefaultMaxMemories = 10000
	DefaultCacheSize   = 128
	DefaultCacheTTL    = 5 * time.Minute
)

// mergeThresholdRatio is the partition fill ratio (against MaxMemories)
// above which consolidation starts merging near-duplicates.
const mergeThresholdRatio = 0.8

// Options configures a Store at construction time.
type Options struct {
	// MaxMemories is the soft cap per partition driving the merge
	// threshold. Defaults to DefaultMaxMemories.
	MaxMemories int

	// RetentionPolicy applied uniformly across partitions during
	// consolidation. Defaults to hybrid retention.
	RetentionPolicy RetentionPolicy

	// CacheSize bounds each partition's recency cache. Defaults to
	// DefaultCacheSize.
	CacheSize int

	// CacheTTL expires recency-cache entries. Defaults to
	// DefaultCacheTTL.
	CacheTTL time.Duration
}

// Store is the authoritative, index-synchronized memory store, partitioned
// by category.
//
// Ownership discipline: the partition maps own the records; the category
// map and the four secondary indices hold ids only. All mutations funnel
// through the store mutex, and the store only ever hands out clones, so
// index entries can never dangle behind a caller-side mutation.
type Store struct {
	mu sync.RWMutex

	maxMemories int
	policy      RetentionPolicy

	partitions map[Type]map[string]*Memory
	categories map[string]Type // id -> owning partition

	byCategory    map[Type]map[string]struct{}
	byImportance  map[int]map[string]struct{} // bucketed to nearest 0.1
	byKeyword     map[string]map[string]struct{}
	byAssociation map[string]map[string]struct{}

	caches map[Type]*recencyCache

	stats Stats
}

// NewStore creates a store with one partition and one recency cache per
// category.
func NewStore(opts Options) *Store {
	if opts.MaxMemories <= 0 {
		opts.MaxMemories = DefaultMaxMemories
	}
	if opts.RetentionPolicy.Kind == "" {
		opts.RetentionPolicy = HybridRetention(0, 0)
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}

	s := &Store{
		maxMemories:   opts.MaxMemories,
		policy:        opts.RetentionPolicy,
		partitions:    make(map[Type]map[string]*Memory),
		categories:    make(map[string]Type),
		byCategory:    make(map[Type]map[string]struct{}),
		byImportance:  make(map[int]map[string]struct{}),
		byKeyword:     make(map[string]map[string]struct{}),
		byAssociation: make(map[string]map[string]struct{}),
		caches:        make(map[Type]*recencyCache),
		stats:         Stats{ByCategory: make(map[Type]int)},
	}

	for _, t := range ValidTypes() {
		s.partitions[t] = make(map[string]*Memory)
		s.byCategory[t] = make(map[string]struct{})
		s.caches[t] = newRecencyCache(opts.CacheSize, opts.CacheTTL)
		s.stats.ByCategory[t] = 0
	}

	return s
}

// Policy returns the retention policy the store was constructed with.
func (s *Store) Policy() RetentionPolicy {
	return s.policy
}

// Store inserts a memory, assigning an id if missing. If the id already
// exists the previous entry is fully removed first, so no stale index
// fragments survive a conflicting insert. Returns a clone of the stored
// record.
func (s *Store) Store(m *Memory) (*Memory, error) {
	if !IsValidType(m.Category) {
		return nil, fmt.Errorf("store: category %q: %w", m.Category, ErrUnknownCategory)
	}
	if m.Importance < 0 || m.Importance > 1 {
		return nil, fmt.Errorf("store: %w (got %v)", ErrInvalidImportance, m.Importance)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	rec := m.Clone()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.LastAccessed = now

	if _, exists := s.categories[rec.ID]; exists {
		s.removeLocked(rec.ID)
	}
	s.insertLocked(rec, now)
	s.recomputeDerivedLocked()

	return rec.Clone(), nil
}

// Update mutates a memory in place. It fails with ErrNotFound when the id
// is unknown; see Delete for the deliberately lenient counterpart. All four
// indices are removed using the pre-update field values and re-inserted
// using the post-update values.
func (s *Store) Update(id string, fields UpdateFields) (*Memory, error) {
	if fields.Importance != nil && (*fields.Importance < 0 || *fields.Importance > 1) {
		return nil, fmt.Errorf("update %s: %w (got %v)", id, ErrInvalidImportance, *fields.Importance)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cat, ok := s.categories[id]
	if !ok {
		return nil, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	rec := s.partitions[cat][id]

	s.unindexLocked(rec)

	if fields.Content != nil {
		rec.Content = *fields.Content
	}
	if fields.Importance != nil {
		rec.Importance = *fields.Importance
	}
	if fields.Associations != nil {
		rec.Associations = append([]string(nil), fields.Associations...)
	}
	if fields.Metadata != nil {
		if rec.Metadata == nil {
			rec.Metadata = make(map[string]any, len(fields.Metadata))
		}
		for k, v := range fields.Metadata {
			rec.Metadata[k] = v
		}
	}
	now := time.Now()
	rec.LastAccessed = now

	s.indexLocked(rec)
	s.caches[cat].put(id, now)
	s.recomputeDerivedLocked()

	return rec.Clone(), nil
}

// Delete removes a memory. Deleting an unknown id is a logged no-op, not an
// error — an intentional asymmetry with Update's strict failure.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		log.Printf("[STORE] delete: memory %s not found, ignoring", id)
		return nil
	}

	s.removeLocked(id)
	s.recomputeDerivedLocked()
	return nil
}

// Get returns a single memory by id. Like retrieval, a successful read
// increments the access count and refreshes the last-accessed timestamp.
func (s *Store) Get(id string) (*Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, ok := s.categories[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}

	now := time.Now()
	rec := s.partitions[cat][id]
	rec.AccessCount++
	rec.LastAccessed = now
	s.caches[cat].put(id, now)
	s.recomputeDerivedLocked()

	return rec.Clone(), nil
}

// Dump returns clones of every live memory across all partitions, in no
// particular order. Used by the snapshot persistence layer and the export
// tool.
func (s *Store) Dump() []*Memory {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Memory, 0, s.stats.TotalMemories)
	for _, t := range ValidTypes() {
		for _, rec := range s.partitions[t] {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// Restore inserts memories preserving their persisted timestamps and access
// counters, replacing any records with conflicting ids. Used to rehydrate a
// store from a snapshot at startup.
func (s *Store) Restore(mems []*Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, m := range mems {
		if !IsValidType(m.Category) {
			return fmt.Errorf("restore %s: category %q: %w", m.ID, m.Category, ErrUnknownCategory)
		}
		rec := m.Clone()
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if _, exists := s.categories[rec.ID]; exists {
			s.removeLocked(rec.ID)
		}
		s.insertLocked(rec, now)
	}
	s.recomputeDerivedLocked()
	return nil
}

// insertLocked wires a record into its partition, the id->category map, all
// four secondary indices, the recency cache, and the incremental counters.
func (s *Store) insertLocked(rec *Memory, now time.Time) {
	s.partitions[rec.Category][rec.ID] = rec
	s.categories[rec.ID] = rec.Category
	s.indexLocked(rec)
	s.caches[rec.Category].put(rec.ID, now)

	s.stats.TotalMemories++
	s.stats.ByCategory[rec.Category]++
}

// removeLocked is the inverse of insertLocked. Returns false when the id is
// unknown.
func (s *Store) removeLocked(id string) bool {
	cat, ok := s.categories[id]
	if !ok {
		return false
	}
	rec := s.partitions[cat][id]

	s.unindexLocked(rec)
	delete(s.partitions[cat], id)
	delete(s.categories, id)
	s.caches[cat].remove(id)

	s.stats.TotalMemories--
	s.stats.ByCategory[cat]--
	return true
}

// indexLocked adds a record's id to the four secondary indices, derived
// from its current field values.
func (s *Store) indexLocked(rec *Memory) {
	s.byCategory[rec.Category][rec.ID] = struct{}{}

	bucket := importanceBucket(rec.Importance)
	if s.byImportance[bucket] == nil {
		s.byImportance[bucket] = make(map[string]struct{})
	}
	s.byImportance[bucket][rec.ID] = struct{}{}

	for _, kw := range ExtractKeywords(rec.Content) {
		if s.byKeyword[kw] == nil {
			s.byKeyword[kw] = make(map[string]struct{})
		}
		s.byKeyword[kw][rec.ID] = struct{}{}
	}

	for _, tag := range rec.Associations {
		if s.byAssociation[tag] == nil {
			s.byAssociation[tag] = make(map[string]struct{})
		}
		s.byAssociation[tag][rec.ID] = struct{}{}
	}
}

// unindexLocked removes a record's id from the four secondary indices using
// the record's current (pre-mutation) field values. Empty buckets are
// dropped so the indices never accumulate dead keys.
func (s *Store) unindexLocked(rec *Memory) {
	delete(s.byCategory[rec.Category], rec.ID)

	bucket := importanceBucket(rec.Importance)
	if set := s.byImportance[bucket]; set != nil {
		delete(set, rec.ID)
		if len(set) == 0 {
			delete(s.byImportance, bucket)
		}
	}

	for _, kw := range ExtractKeywords(rec.Content) {
		if set := s.byKeyword[kw]; set != nil {
			delete(set, rec.ID)
			if len(set) == 0 {
				delete(s.byKeyword, kw)
			}
		}
	}

	for _, tag := range rec.Associations {
		if set := s.byAssociation[tag]; set != nil {
			delete(set, rec.ID)
			if len(set) == 0 {
				delete(s.byAssociation, tag)
			}
		}
	}
}

// importanceBucket rounds an importance value to the nearest 0.1 for the
// importance index.
func importanceBucket(importance float64) int {
	return int(math.Round(importance * 10))
}
