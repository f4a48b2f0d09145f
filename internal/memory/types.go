// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memory

import "time"

// Type is the category partition key for a memory.
type Type string

// Memory categories. Each category owns its own partition in the store.
const (
	TypeWorking    Type = "working"
	TypeEpisodic   Type = "episodic"
	TypeSemantic   Type = "semantic"
	TypeProcedural Type = "procedural"
	TypeSensory    Type = "sensory"
	TypeEmotional  Type = "emotional"
	TypeMeta       Type = "meta"
)

// ValidTypes returns all memory categories in a stable order.
func ValidTypes() []Type {
	return []Type{
		TypeWorking,
		TypeEpisodic,
		TypeSemantic,
		TypeProcedural,
		TypeSensory,
		TypeEmotional,
		TypeMeta,
	}
}

// IsValidType checks if a category is one of the known partitions.
func IsValidType(t Type) bool {
	for _, valid := range ValidTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// Memory represents a single recallable record.
type Memory struct {
	ID           string         `yaml:"id" json:"id"`
	Category     Type           `yaml:"category" json:"category"`
	Content      string         `yaml:"-" json:"content"`
	CreatedAt    time.Time      `yaml:"created" json:"created"`
	Importance   float64        `yaml:"importance" json:"importance"`
	AccessCount  int            `yaml:"access_count" json:"access_count"`
	LastAccessed time.Time      `yaml:"last_accessed,omitempty" json:"last_accessed,omitempty"`
	Associations []string       `yaml:"associations,omitempty" json:"associations,omitempty"`
	Metadata     map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Clone returns a deep copy of the memory. The store hands out clones so
// callers cannot mutate indexed state behind the store's back.
func (m *Memory) Clone() *Memory {
	c := *m
	if m.Associations != nil {
		c.Associations = append([]string(nil), m.Associations...)
	}
	if m.Metadata != nil {
		c.Metadata = make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// HasAssociation checks whether the memory carries the given tag.
func (m *Memory) HasAssociation(tag string) bool {
	for _, a := range m.Associations {
		if a == tag {
			return true
		}
	}
	return false
}

// Metadata keys written by the consolidation engine on merged records.
const (
	MetaMerged      = "merged"
	MetaMergedCount = "merged_count"
	MetaMergedIDs   = "merged_ids"
)

// UpdateFields holds the mutable fields of a memory for Update calls.
// Nil pointers (and nil slices/maps) leave the current value untouched.
type UpdateFields struct {
	Content      *string
	Importance   *float64
	Associations []string
	Metadata     map[string]any
}

// Query describes a retrieval request. Zero values mean "no constraint".
type Query struct {
	Category      Type
	MinImportance float64
	Since         time.Time
	Until         time.Time
	Keywords      []string
	Associations  []string
	Limit         int
}

// DefaultQueryLimit is applied when a query does not specify a limit.
const DefaultQueryLimit = 10

// Stats is an aggregate snapshot of the store's contents.
type Stats struct {
	TotalMemories     int          `json:"total_memories"`
	ByCategory        map[Type]int `json:"by_category"`
	TotalAccessCount  int          `json:"total_access_count"`
	AverageImportance float64      `json:"average_importance"`
}
