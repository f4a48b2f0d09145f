// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memory

// Stats returns an aggregate snapshot of the store. The counters are
// maintained incrementally; the derived aggregates are recomputed by a full
// walk on every mutating call, so the snapshot is always current.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.stats
	out.ByCategory = make(map[Type]int, len(s.stats.ByCategory))
	for t, n := range s.stats.ByCategory {
		out.ByCategory[t] = n
	}
	return out
}

// recomputeDerivedLocked walks all partitions to refresh the total access
// count and average importance. An O(n) cost per mutation, acceptable at
// the store's target scale.
func (s *Store) recomputeDerivedLocked() {
	total := 0
	accesses := 0
	importanceSum := 0.0
	for _, t := range ValidTypes() {
		for _, rec := range s.partitions[t] {
			total++
			accesses += rec.AccessCount
			importanceSum += rec.Importance
		}
	}

	s.stats.TotalAccessCount = accesses
	if total > 0 {
		s.stats.AverageImportance = importanceSum / float64(total)
	} else {
		s.stats.AverageImportance = 0
	}
}
