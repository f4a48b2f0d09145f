// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memory

import (
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// similarityKeyWidth is how many leading extracted keywords form the
// grouping key for merge candidates.
const similarityKeyWidth = 3

// Consolidate runs one retention-and-merge pass over every partition under
// the store's retention policy. The whole pass holds the store mutex, so it
// is serialized against Store, Update, and Delete.
//
// Merged output is appended after grouping was computed, so a synthetic
// record is never re-considered within the same pass. Repeated passes may
// cascade further merges over time.
func (s *Store) Consolidate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, cat := range ValidTypes() {
		s.consolidatePartitionLocked(cat, now)
	}
	s.recomputeDerivedLocked()
	return nil
}

func (s *Store) consolidatePartitionLocked(cat Type, now time.Time) {
	// Step 1: prune under the retention policy.
	var doomed []string
	for id, rec := range s.partitions[cat] {
		if s.policy.shouldPrune(rec, now) {
			doomed = append(doomed, id)
		}
	}
	for _, id := range doomed {
		s.removeLocked(id)
	}
	if len(doomed) > 0 {
		log.Printf("[CONSOLIDATE] pruned %d memories from %s", len(doomed), cat)
	}

	// Step 2: merge near-duplicates, but only once the partition is
	// within reach of its cap.
	if float64(len(s.partitions[cat])) <= mergeThresholdRatio*float64(s.maxMemories) {
		return
	}

	groups := make(map[string][]*Memory)
	for _, rec := range s.partitions[cat] {
		key := similarityKey(rec.Content)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], rec)
	}

	for key, members := range groups {
		if len(members) <= 2 {
			continue
		}
		// One group's failure must not abort the rest of the pass.
		if err := s.mergeGroupLocked(members, now); err != nil {
			log.Printf("[CONSOLIDATE] merge failed for group %q in %s: %v", key, cat, err)
			continue
		}
		log.Printf("[CONSOLIDATE] merged %d memories in %s (key %q)", len(members), cat, key)
	}
}

// mergeGroupLocked collapses a similarity group into one synthetic memory:
// associations are unioned, access counts summed, importance maxed, and the
// remaining fields copied from the primary (the member with the highest
// importance plus recency weight). The originals are deleted and the
// synthetic record stored under a brand-new id with merge provenance in its
// metadata.
func (s *Store) mergeGroupLocked(members []*Memory, now time.Time) error {
	primary := members[0]
	best := primary.Importance + recencyBonus(primary.LastAccessed, now)
	for _, rec := range members[1:] {
		if weight := rec.Importance + recencyBonus(rec.LastAccessed, now); weight > best {
			primary = rec
			best = weight
		}
	}

	merged := primary.Clone()
	merged.ID = uuid.NewString()
	merged.Associations = nil
	merged.AccessCount = 0
	merged.Importance = 0

	seen := make(map[string]struct{})
	originalIDs := make([]string, 0, len(members))
	for _, rec := range members {
		for _, tag := range rec.Associations {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			merged.Associations = append(merged.Associations, tag)
		}
		merged.AccessCount += rec.AccessCount
		if rec.Importance > merged.Importance {
			merged.Importance = rec.Importance
		}
		originalIDs = append(originalIDs, rec.ID)
	}

	if merged.Metadata == nil {
		merged.Metadata = make(map[string]any)
	}
	merged.Metadata[MetaMerged] = true
	merged.Metadata[MetaMergedCount] = len(members)
	merged.Metadata[MetaMergedIDs] = originalIDs

	for _, id := range originalIDs {
		s.removeLocked(id)
	}
	s.insertLocked(merged, now)
	return nil
}

// similarityKey joins a memory's first extracted keywords into the grouping
// key used for merge candidates. Shared by every consolidation pass so that
// grouping stays stable across passes.
func similarityKey(content string) string {
	keywords := ExtractKeywords(content)
	if len(keywords) > similarityKeyWidth {
		keywords = keywords[:similarityKeyWidth]
	}
	return strings.Join(keywords, "|")
}
