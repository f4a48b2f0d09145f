// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memory

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// keywordBoost is the score contribution of each query keyword found in a
// memory's extracted-keyword set.
const keywordBoost = 0.1

// Retrieve returns the highest-ranked memories matching the query, at most
// query.Limit of them.
//
// Retrieval is not read-only: every returned memory has its access count
// incremented and its last-accessed timestamp refreshed, and is re-entered
// into its partition's recency cache.
//
// Candidate generation runs in two phases: a fast path over the recency
// caches, then — if the limit is not yet reached — a scan over the
// keyword-index union (or the whole partition when no keywords were given).
// The two phases are not deduplicated against each other; a memory present
// in both can appear twice in the result.
func (s *Store) Retrieve(q Query) ([]*Memory, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	var targets []Type
	if q.Category != "" {
		if !IsValidType(q.Category) {
			return nil, fmt.Errorf("retrieve: category %q: %w", q.Category, ErrUnknownCategory)
		}
		targets = []Type{q.Category}
	} else {
		targets = ValidTypes()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	// Phase 1: recency-cache fast path.
	matches := make([]*Memory, 0, limit)
	for _, cat := range targets {
		for _, id := range s.caches[cat].ids(now) {
			rec, ok := s.partitions[cat][id]
			if ok && matchesQuery(rec, q) {
				matches = append(matches, rec)
			}
		}
	}

	// Phase 2: keyword-index candidates, up to the remaining quota.
	if quota := limit - len(matches); quota > 0 {
		for _, cat := range targets {
			for _, id := range s.candidateIDsLocked(cat, q.Keywords) {
				rec, ok := s.partitions[cat][id]
				if !ok || !matchesQuery(rec, q) {
					continue
				}
				matches = append(matches, rec)
				quota--
				if quota == 0 {
					break
				}
			}
			if quota == 0 {
				break
			}
		}
	}

	// Rank, truncate, and apply access tracking to what is returned.
	sort.SliceStable(matches, func(i, j int) bool {
		return s.relevanceScore(matches[i], q.Keywords, now) > s.relevanceScore(matches[j], q.Keywords, now)
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]*Memory, len(matches))
	for i, rec := range matches {
		rec.AccessCount++
		rec.LastAccessed = now
		s.caches[rec.Category].put(rec.ID, now)
		out[i] = rec.Clone()
	}
	s.recomputeDerivedLocked()

	return out, nil
}

// Query is an alias for Retrieve.
func (s *Store) Query(q Query) ([]*Memory, error) {
	return s.Retrieve(q)
}

// candidateIDsLocked returns the candidate ids for one partition: the union
// of the keyword-index buckets for each case-folded query keyword, or every
// id in the partition when no keywords were supplied.
func (s *Store) candidateIDsLocked(cat Type, keywords []string) []string {
	if len(keywords) == 0 {
		ids := make([]string, 0, len(s.partitions[cat]))
		for id := range s.partitions[cat] {
			ids = append(ids, id)
		}
		return ids
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, kw := range keywords {
		for id := range s.byKeyword[strings.ToLower(kw)] {
			if s.categories[id] != cat {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// matchesQuery is the filter predicate shared by both retrieval phases.
// Category membership is implied by partition choice; keywords drive
// candidate generation and scoring, not filtering.
func matchesQuery(rec *Memory, q Query) bool {
	if rec.Importance < q.MinImportance {
		return false
	}
	if !q.Since.IsZero() && rec.CreatedAt.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && rec.CreatedAt.After(q.Until) {
		return false
	}
	if len(q.Associations) > 0 {
		found := false
		for _, tag := range q.Associations {
			if rec.HasAssociation(tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// relevanceScore combines importance, keyword overlap, and recency:
//
//	score = importance + 0.1*overlap + max(0, 1 - ageHours/24)
func (s *Store) relevanceScore(rec *Memory, keywords []string, now time.Time) float64 {
	return rec.Importance +
		keywordBoost*float64(keywordOverlap(rec, keywords)) +
		recencyBonus(rec.LastAccessed, now)
}

// keywordOverlap counts the query keywords present in the memory's
// extracted-keyword set, case-folded on both sides.
func keywordOverlap(rec *Memory, keywords []string) int {
	if len(keywords) == 0 {
		return 0
	}
	extracted := make(map[string]struct{})
	for _, kw := range ExtractKeywords(rec.Content) {
		extracted[kw] = struct{}{}
	}
	overlap := 0
	for _, kw := range keywords {
		if _, ok := extracted[strings.ToLower(kw)]; ok {
			overlap++
		}
	}
	return overlap
}

// recencyBonus decays linearly from 1 to 0 over 24 hours since the last
// access. A missing last-accessed timestamp yields no bonus.
func recencyBonus(lastAccessed, now time.Time) float64 {
	if lastAccessed.IsZero() {
		return 0
	}
	ageHours := now.Sub(lastAccessed).Hours()
	return math.Max(0, 1-ageHours/24)
}
