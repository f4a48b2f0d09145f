// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memory

import "time"

// RetentionKind selects the pruning rule applied during consolidation.
type RetentionKind string

// Retention policy kinds.
const (
	RetentionTimeBased       RetentionKind = "time_based"
	RetentionCountBased      RetentionKind = "count_based"
	RetentionImportanceBased RetentionKind = "importance_based"
	RetentionHybrid          RetentionKind = "hybrid"
)

// Retention defaults.
const (
	DefaultRetentionMaxAge        = 7 * 24 * time.Hour
	DefaultRetentionMinImportance = 0.3
)

// RetentionPolicy is the rule set deciding which memories are pruned.
// It is supplied once at store construction and applied uniformly across
// all partitions.
type RetentionPolicy struct {
	Kind          RetentionKind
	MaxAge        time.Duration
	MaxCount      int
	MinImportance float64
}

// TimeBasedRetention prunes memories older than maxAge.
// A zero maxAge falls back to DefaultRetentionMaxAge.
func TimeBasedRetention(maxAge time.Duration) RetentionPolicy {
	if maxAge <= 0 {
		maxAge = DefaultRetentionMaxAge
	}
	return RetentionPolicy{Kind: RetentionTimeBased, MaxAge: maxAge}
}

// CountBasedRetention bounds the store to maxCount memories. The policy has
// no per-item removal rule; bounding relies entirely on the consolidation
// engine's merge threshold.
func CountBasedRetention(maxCount int) RetentionPolicy {
	return RetentionPolicy{Kind: RetentionCountBased, MaxCount: maxCount}
}

// ImportanceBasedRetention prunes memories whose importance falls below
// minImportance. A zero threshold falls back to
// DefaultRetentionMinImportance.
func ImportanceBasedRetention(minImportance float64) RetentionPolicy {
	if minImportance <= 0 {
		minImportance = DefaultRetentionMinImportance
	}
	return RetentionPolicy{Kind: RetentionImportanceBased, MinImportance: minImportance}
}

// HybridRetention prunes memories that are both old and either unimportant
// or never accessed.
func HybridRetention(maxAge time.Duration, minImportance float64) RetentionPolicy {
	if maxAge <= 0 {
		maxAge = DefaultRetentionMaxAge
	}
	if minImportance <= 0 {
		minImportance = DefaultRetentionMinImportance
	}
	return RetentionPolicy{Kind: RetentionHybrid, MaxAge: maxAge, MinImportance: minImportance}
}

// shouldPrune reports whether the memory is eligible for removal under the
// policy at the given time.
func (p RetentionPolicy) shouldPrune(m *Memory, now time.Time) bool {
	age := now.Sub(m.CreatedAt)

	switch p.Kind {
	case RetentionTimeBased:
		return age > p.MaxAge
	case RetentionCountBased:
		// No per-item rule; growth is bounded by merging alone.
		return false
	case RetentionImportanceBased:
		return m.Importance < p.MinImportance
	case RetentionHybrid:
		if age <= p.MaxAge {
			return false
		}
		return m.Importance < p.MinImportance || m.AccessCount == 0
	default:
		return false
	}
}
