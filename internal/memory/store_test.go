// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertIndexConsistency verifies the core invariant: every id referenced by
// the category map, a secondary index, or a recency cache resolves to a live
// record in exactly one partition, and every live record is fully indexed.
func assertIndexConsistency(t *testing.T, s *Store) {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()

	live := make(map[string]*Memory)
	for _, cat := range ValidTypes() {
		for id, rec := range s.partitions[cat] {
			require.Equal(t, cat, rec.Category, "record %s in wrong partition", id)
			live[id] = rec
		}
	}

	require.Len(t, s.categories, len(live))
	for id, cat := range s.categories {
		rec, ok := live[id]
		require.True(t, ok, "category map references dead id %s", id)
		require.Equal(t, rec.Category, cat)
	}

	for cat, set := range s.byCategory {
		for id := range set {
			rec, ok := live[id]
			require.True(t, ok, "category index references dead id %s", id)
			require.Equal(t, cat, rec.Category)
		}
	}
	for bucket, set := range s.byImportance {
		require.NotEmpty(t, set, "empty importance bucket %d left behind", bucket)
		for id := range set {
			rec, ok := live[id]
			require.True(t, ok, "importance index references dead id %s", id)
			require.Equal(t, bucket, importanceBucket(rec.Importance))
		}
	}
	for kw, set := range s.byKeyword {
		require.NotEmpty(t, set, "empty keyword bucket %q left behind", kw)
		for id := range set {
			rec, ok := live[id]
			require.True(t, ok, "keyword index references dead id %s", id)
			require.Contains(t, ExtractKeywords(rec.Content), kw)
		}
	}
	for tag, set := range s.byAssociation {
		require.NotEmpty(t, set, "empty association bucket %q left behind", tag)
		for id := range set {
			rec, ok := live[id]
			require.True(t, ok, "association index references dead id %s", id)
			require.True(t, rec.HasAssociation(tag))
		}
	}

	for cat, cache := range s.caches {
		for id := range cache.touched {
			rec, ok := live[id]
			require.True(t, ok, "recency cache references dead id %s", id)
			require.Equal(t, cat, rec.Category)
		}
	}

	// Every live record must be reachable from the indices it belongs in.
	for id, rec := range live {
		require.Contains(t, s.byCategory[rec.Category], id)
		require.Contains(t, s.byImportance[importanceBucket(rec.Importance)], id)
		for _, kw := range ExtractKeywords(rec.Content) {
			require.Contains(t, s.byKeyword[kw], id)
		}
		for _, tag := range rec.Associations {
			require.Contains(t, s.byAssociation[tag], id)
		}
	}
}

func TestStore_AssignsIDAndTimestamps(t *testing.T) {
	s := NewStore(Options{})

	stored, err := s.Store(&Memory{
		Category:   TypeSemantic,
		Content:    "gRPC keepalive defaults caused silent disconnects",
		Importance: 0.7,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())
	assert.False(t, stored.LastAccessed.IsZero())
	assert.Equal(t, 0, stored.AccessCount)
	assertIndexConsistency(t, s)
}

func TestStore_PreservesCallerTimestamps(t *testing.T) {
	s := NewStore(Options{})
	created := time.Now().Add(-48 * time.Hour)

	stored, err := s.Store(&Memory{
		ID:         "mem-1",
		Category:   TypeEpisodic,
		Content:    "deployment rollback on friday evening",
		Importance: 0.5,
		CreatedAt:  created,
	})
	require.NoError(t, err)

	assert.Equal(t, "mem-1", stored.ID)
	assert.WithinDuration(t, created, stored.CreatedAt, time.Second)
}

func TestStore_RejectsUnknownCategory(t *testing.T) {
	s := NewStore(Options{})

	_, err := s.Store(&Memory{Category: "telepathic", Content: "nope"})
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = s.Store(&Memory{Content: "missing category"})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestStore_RejectsOutOfRangeImportance(t *testing.T) {
	s := NewStore(Options{})

	_, err := s.Store(&Memory{Category: TypeWorking, Content: "x", Importance: 1.5})
	assert.ErrorIs(t, err, ErrInvalidImportance)

	_, err = s.Store(&Memory{Category: TypeWorking, Content: "x", Importance: -0.1})
	assert.ErrorIs(t, err, ErrInvalidImportance)
}

func TestStore_ConflictingInsertReplacesIndexEntries(t *testing.T) {
	s := NewStore(Options{})

	_, err := s.Store(&Memory{
		ID:           "mem-1",
		Category:     TypeSemantic,
		Content:      "postgres vacuum tuning notes",
		Importance:   0.4,
		Associations: []string{"databases"},
	})
	require.NoError(t, err)

	_, err = s.Store(&Memory{
		ID:           "mem-1",
		Category:     TypeSemantic,
		Content:      "redis eviction policy notes",
		Importance:   0.9,
		Associations: []string{"caching"},
	})
	require.NoError(t, err)

	s.mu.RLock()
	assert.NotContains(t, s.byKeyword, "postgres")
	assert.Contains(t, s.byKeyword, "redis")
	assert.NotContains(t, s.byAssociation, "databases")
	assert.Contains(t, s.byAssociation, "caching")
	assert.Len(t, s.partitions[TypeSemantic], 1)
	s.mu.RUnlock()

	assert.Equal(t, 1, s.Stats().TotalMemories)
	assertIndexConsistency(t, s)
}

func TestStore_ReturnsClones(t *testing.T) {
	s := NewStore(Options{})

	stored, err := s.Store(&Memory{
		Category:     TypeSemantic,
		Content:      "clone discipline keeps indices honest",
		Importance:   0.5,
		Associations: []string{"internals"},
		Metadata:     map[string]any{"source": "test"},
	})
	require.NoError(t, err)

	// Mutating the returned record must not disturb indexed state.
	stored.Associations[0] = "tampered"
	stored.Metadata["source"] = "tampered"

	got, err := s.Get(stored.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"internals"}, got.Associations)
	assert.Equal(t, "test", got.Metadata["source"])
}

func TestUpdate_UnknownIDFails(t *testing.T) {
	s := NewStore(Options{})

	content := "anything"
	_, err := s.Update("missing", UpdateFields{Content: &content})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_ReindexesAllFields(t *testing.T) {
	s := NewStore(Options{})

	stored, err := s.Store(&Memory{
		Category:     TypeProcedural,
		Content:      "rotate credentials quarterly",
		Importance:   0.2,
		Associations: []string{"security"},
	})
	require.NoError(t, err)
	before := stored.LastAccessed

	content := "rotate certificates monthly"
	importance := 0.9
	updated, err := s.Update(stored.ID, UpdateFields{
		Content:      &content,
		Importance:   &importance,
		Associations: []string{"operations"},
		Metadata:     map[string]any{"reviewed": true},
	})
	require.NoError(t, err)

	assert.Equal(t, content, updated.Content)
	assert.Equal(t, 0.9, updated.Importance)
	assert.Equal(t, []string{"operations"}, updated.Associations)
	assert.Equal(t, true, updated.Metadata["reviewed"])
	assert.False(t, updated.LastAccessed.Before(before))

	s.mu.RLock()
	assert.NotContains(t, s.byKeyword, "credentials")
	assert.Contains(t, s.byKeyword, "certificates")
	assert.NotContains(t, s.byAssociation, "security")
	assert.Contains(t, s.byAssociation, "operations")
	assert.NotContains(t, s.byImportance, importanceBucket(0.2))
	assert.Contains(t, s.byImportance, importanceBucket(0.9))
	s.mu.RUnlock()

	assertIndexConsistency(t, s)
}

func TestUpdate_PartialLeavesOtherFieldsAlone(t *testing.T) {
	s := NewStore(Options{})

	stored, err := s.Store(&Memory{
		Category:     TypeSemantic,
		Content:      "incident reviews happen within five days",
		Importance:   0.6,
		Associations: []string{"process"},
	})
	require.NoError(t, err)

	importance := 0.8
	updated, err := s.Update(stored.ID, UpdateFields{Importance: &importance})
	require.NoError(t, err)

	assert.Equal(t, stored.Content, updated.Content)
	assert.Equal(t, []string{"process"}, updated.Associations)
	assert.Equal(t, 0.8, updated.Importance)
}

func TestUpdate_RejectsOutOfRangeImportance(t *testing.T) {
	s := NewStore(Options{})

	stored, err := s.Store(&Memory{Category: TypeWorking, Content: "scratch", Importance: 0.5})
	require.NoError(t, err)

	bad := 1.2
	_, err = s.Update(stored.ID, UpdateFields{Importance: &bad})
	assert.ErrorIs(t, err, ErrInvalidImportance)
}

func TestDelete_UnknownIDIsNoOp(t *testing.T) {
	s := NewStore(Options{})
	assert.NoError(t, s.Delete("never-existed"))
}

func TestDelete_RemovesFromEverything(t *testing.T) {
	s := NewStore(Options{})

	stored, err := s.Store(&Memory{
		Category:     TypeEmotional,
		Content:      "user frustration spiked after the pricing change",
		Importance:   0.8,
		Associations: []string{"feedback"},
	})
	require.NoError(t, err)

	require.NoError(t, s.Delete(stored.ID))

	_, err = s.Get(stored.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, s.Stats().TotalMemories)
	assertIndexConsistency(t, s)
}

func TestGet_TracksAccess(t *testing.T) {
	s := NewStore(Options{})

	stored, err := s.Store(&Memory{Category: TypeSemantic, Content: "access tracking check", Importance: 0.5})
	require.NoError(t, err)

	first, err := s.Get(stored.ID)
	require.NoError(t, err)
	second, err := s.Get(stored.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, first.AccessCount)
	assert.Equal(t, 2, second.AccessCount)
	assert.False(t, second.LastAccessed.Before(first.LastAccessed))
}

func TestStats_CountersAndDerived(t *testing.T) {
	s := NewStore(Options{})

	_, err := s.Store(&Memory{Category: TypeSemantic, Content: "first fact", Importance: 0.2})
	require.NoError(t, err)
	stored, err := s.Store(&Memory{Category: TypeEpisodic, Content: "second fact", Importance: 0.8})
	require.NoError(t, err)

	_, err = s.Get(stored.ID)
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, 2, stats.TotalMemories)
	assert.Equal(t, 1, stats.ByCategory[TypeSemantic])
	assert.Equal(t, 1, stats.ByCategory[TypeEpisodic])
	assert.Equal(t, 0, stats.ByCategory[TypeWorking])
	assert.Equal(t, 1, stats.TotalAccessCount)
	assert.InDelta(t, 0.5, stats.AverageImportance, 1e-9)
}

func TestStats_EmptyStore(t *testing.T) {
	s := NewStore(Options{})

	stats := s.Stats()
	assert.Equal(t, 0, stats.TotalMemories)
	assert.Equal(t, 0, stats.TotalAccessCount)
	assert.Equal(t, 0.0, stats.AverageImportance)
	assert.Len(t, stats.ByCategory, len(ValidTypes()))
}

func TestDumpRestore_RoundTrip(t *testing.T) {
	s := NewStore(Options{})

	created := time.Now().Add(-72 * time.Hour)
	_, err := s.Store(&Memory{
		ID:          "mem-1",
		Category:    TypeSemantic,
		Content:     "snapshot round trip",
		Importance:  0.6,
		CreatedAt:   created,
		AccessCount: 5,
	})
	require.NoError(t, err)

	dump := s.Dump()
	require.Len(t, dump, 1)

	fresh := NewStore(Options{})
	require.NoError(t, fresh.Restore(dump))

	got, err := fresh.Get("mem-1")
	require.NoError(t, err)
	assert.WithinDuration(t, created, got.CreatedAt, time.Second)
	// Restore preserved the persisted count; Get added one.
	assert.Equal(t, 6, got.AccessCount)
	assertIndexConsistency(t, fresh)
}

func TestRestore_RejectsUnknownCategory(t *testing.T) {
	s := NewStore(Options{})
	err := s.Restore([]*Memory{{ID: "x", Category: "bogus", Content: "bad snapshot"}})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestStore_ConcurrentMutations(t *testing.T) {
	s := NewStore(Options{})
	cats := ValidTypes()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := fmt.Sprintf("mem-%d-%d", g, i)
				_, err := s.Store(&Memory{
					ID:         id,
					Category:   cats[(g+i)%len(cats)],
					Content:    fmt.Sprintf("concurrent record %d from worker %d", i, g),
					Importance: float64(i%10) / 10,
				})
				assert.NoError(t, err)
				if i%3 == 0 {
					assert.NoError(t, s.Delete(id))
				} else if i%3 == 1 {
					imp := 0.5
					_, err := s.Update(id, UpdateFields{Importance: &imp})
					assert.NoError(t, err)
				}
			}
		}(g)
	}
	wg.Wait()

	assertIndexConsistency(t, s)
}
