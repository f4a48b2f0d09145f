// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsolidate_ImportanceBasedPruning(t *testing.T) {
	s := NewStore(Options{RetentionPolicy: ImportanceBasedRetention(0.3)})

	mustStore(t, s, &Memory{Category: TypeSemantic, Content: "forgettable trivia entry", Importance: 0.1})
	keep := mustStore(t, s, &Memory{Category: TypeSemantic, Content: "load-bearing architecture fact", Importance: 0.6})

	require.NoError(t, s.Consolidate())

	dump := s.Dump()
	require.Len(t, dump, 1)
	assert.Equal(t, keep.ID, dump[0].ID)
	assertIndexConsistency(t, s)
}

func TestConsolidate_TimeBasedPruning(t *testing.T) {
	s := NewStore(Options{RetentionPolicy: TimeBasedRetention(24 * time.Hour)})

	mustStore(t, s, &Memory{
		Category:   TypeEpisodic,
		Content:    "stale event from last week",
		Importance: 0.9,
		CreatedAt:  time.Now().Add(-48 * time.Hour),
	})
	fresh := mustStore(t, s, &Memory{Category: TypeEpisodic, Content: "event from this morning", Importance: 0.1})

	require.NoError(t, s.Consolidate())

	dump := s.Dump()
	require.Len(t, dump, 1)
	assert.Equal(t, fresh.ID, dump[0].ID)
}

func TestConsolidate_CountBasedNeverPrunes(t *testing.T) {
	s := NewStore(Options{RetentionPolicy: CountBasedRetention(1)})

	mustStore(t, s, &Memory{
		Category:   TypeSemantic,
		Content:    "old and unimportant but retained",
		Importance: 0.0,
		CreatedAt:  time.Now().Add(-30 * 24 * time.Hour),
	})
	mustStore(t, s, &Memory{Category: TypeSemantic, Content: "another retained record", Importance: 0.0})

	require.NoError(t, s.Consolidate())
	assert.Len(t, s.Dump(), 2)
}

func TestConsolidate_HybridPruning(t *testing.T) {
	s := NewStore(Options{RetentionPolicy: HybridRetention(24*time.Hour, 0.5)})
	old := time.Now().Add(-48 * time.Hour)

	mustStore(t, s, &Memory{Category: TypeSemantic, Content: "old low importance goner", Importance: 0.2, CreatedAt: old})
	neverAccessed := mustStore(t, s, &Memory{Category: TypeSemantic, Content: "old important but never read", Importance: 0.9, CreatedAt: old})
	accessed := mustStore(t, s, &Memory{Category: TypeSemantic, Content: "old important and well read", Importance: 0.9, CreatedAt: old, AccessCount: 4})
	freshLow := mustStore(t, s, &Memory{Category: TypeSemantic, Content: "fresh low importance survivor", Importance: 0.1})

	require.NoError(t, s.Consolidate())

	survivors := idsOf(s.Dump())
	assert.ElementsMatch(t, []string{accessed.ID, freshLow.ID}, survivors)
	assert.NotContains(t, survivors, neverAccessed.ID)
}

func TestConsolidate_MergesSimilarityGroups(t *testing.T) {
	// MaxMemories 3 puts the merge threshold at 2.4 records per partition,
	// so three similar records trigger a merge.
	s := NewStore(Options{MaxMemories: 3, RetentionPolicy: CountBasedRetention(0)})

	a := mustStore(t, s, &Memory{
		Category:     TypeSemantic,
		Content:      "payment gateway timeout during checkout",
		Importance:   0.9,
		Associations: []string{"payments"},
		AccessCount:  1,
	})
	b := mustStore(t, s, &Memory{
		Category:     TypeSemantic,
		Content:      "payment gateway timeout on retries",
		Importance:   0.2,
		Associations: []string{"incidents"},
		AccessCount:  2,
	})
	c := mustStore(t, s, &Memory{
		Category:     TypeSemantic,
		Content:      "payment gateway timeout affecting refunds",
		Importance:   0.5,
		Associations: []string{"payments", "refunds"},
		AccessCount:  3,
	})

	require.NoError(t, s.Consolidate())

	dump := s.Dump()
	require.Len(t, dump, 1)
	merged := dump[0]

	// The synthetic record gets a brand-new id.
	assert.NotContains(t, []string{a.ID, b.ID, c.ID}, merged.ID)

	// Content comes from the primary: the highest importance among an
	// equally fresh group.
	assert.Equal(t, a.Content, merged.Content)

	// Merge algebra: union, sum, max.
	assert.ElementsMatch(t, []string{"payments", "incidents", "refunds"}, merged.Associations)
	assert.Equal(t, 6, merged.AccessCount)
	assert.Equal(t, 0.9, merged.Importance)

	// Provenance metadata.
	assert.Equal(t, true, merged.Metadata[MetaMerged])
	assert.Equal(t, 3, merged.Metadata[MetaMergedCount])
	assert.ElementsMatch(t, []string{a.ID, b.ID, c.ID}, merged.Metadata[MetaMergedIDs])

	assertIndexConsistency(t, s)
}

func TestConsolidate_NoMergeBelowFillThreshold(t *testing.T) {
	s := NewStore(Options{MaxMemories: 100, RetentionPolicy: CountBasedRetention(0)})

	for _, suffix := range []string{"checkout", "retries", "refunds"} {
		mustStore(t, s, &Memory{
			Category:   TypeSemantic,
			Content:    "payment gateway timeout during " + suffix,
			Importance: 0.5,
		})
	}

	require.NoError(t, s.Consolidate())
	assert.Len(t, s.Dump(), 3)
}

func TestConsolidate_GroupsOfTwoAreLeftAlone(t *testing.T) {
	s := NewStore(Options{MaxMemories: 3, RetentionPolicy: CountBasedRetention(0)})

	mustStore(t, s, &Memory{Category: TypeSemantic, Content: "payment gateway timeout during checkout", Importance: 0.5})
	mustStore(t, s, &Memory{Category: TypeSemantic, Content: "payment gateway timeout on retries", Importance: 0.5})
	mustStore(t, s, &Memory{Category: TypeSemantic, Content: "entirely unrelated deployment note", Importance: 0.5})

	require.NoError(t, s.Consolidate())
	assert.Len(t, s.Dump(), 3)
}

func TestConsolidate_PartitionsAreIndependent(t *testing.T) {
	s := NewStore(Options{MaxMemories: 3, RetentionPolicy: CountBasedRetention(0)})

	// Three similar records in semantic, one sharing their wording in
	// episodic. Only the semantic group merges.
	for _, suffix := range []string{"checkout", "retries", "refunds"} {
		mustStore(t, s, &Memory{
			Category:   TypeSemantic,
			Content:    "payment gateway timeout during " + suffix,
			Importance: 0.5,
		})
	}
	loner := mustStore(t, s, &Memory{Category: TypeEpisodic, Content: "payment gateway timeout witnessed live", Importance: 0.5})

	require.NoError(t, s.Consolidate())

	dump := s.Dump()
	assert.Len(t, dump, 2)
	assert.Contains(t, idsOf(dump), loner.ID)
}

func TestConsolidate_EmptyStore(t *testing.T) {
	s := NewStore(Options{})
	require.NoError(t, s.Consolidate())
	assert.Equal(t, 0, s.Stats().TotalMemories)
}

func TestSimilarityKey(t *testing.T) {
	assert.Equal(t, "payment|gateway|timeout",
		similarityKey("Payment gateway timeout during checkout"))
	assert.Equal(t, "payment|gateway",
		similarityKey("payment gateway"))
	assert.Equal(t, "", similarityKey("a an of"))
	// Stable across calls and across differing tails.
	assert.Equal(t,
		similarityKey("payment gateway timeout during checkout"),
		similarityKey("payment gateway timeout on retries"))
}

func TestRetentionPolicy_Defaults(t *testing.T) {
	p := TimeBasedRetention(0)
	assert.Equal(t, DefaultRetentionMaxAge, p.MaxAge)

	p = ImportanceBasedRetention(0)
	assert.Equal(t, DefaultRetentionMinImportance, p.MinImportance)

	p = HybridRetention(0, 0)
	assert.Equal(t, DefaultRetentionMaxAge, p.MaxAge)
	assert.Equal(t, DefaultRetentionMinImportance, p.MinImportance)
}
