// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/munin-mcp/munin/internal/memory"
)

// MuninMemory is the snapshot row for one memory record. Associations and
// metadata are stored as JSON text so the schema works unchanged on both
// sqlite and postgres.
type MuninMemory struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Category     string    `gorm:"index;not null" json:"category"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	Importance   float64   `gorm:"default:0" json:"importance"`
	AccessCount  int       `gorm:"column:access_count;default:0" json:"access_count"`
	LastAccessed time.Time `gorm:"column:last_accessed" json:"last_accessed"`
	Associations string    `gorm:"type:text" json:"associations"` // JSON array
	Metadata     string    `gorm:"type:text" json:"metadata"`     // JSON object
}

// TableName specifies the table name for MuninMemory
func (MuninMemory) TableName() string {
	return "munin_memories"
}

// toRecord converts an in-memory record to its snapshot row.
func toRecord(m *memory.Memory) (*MuninMemory, error) {
	rec := &MuninMemory{
		ID:           m.ID,
		Category:     string(m.Category),
		Content:      m.Content,
		CreatedAt:    m.CreatedAt,
		Importance:   m.Importance,
		AccessCount:  m.AccessCount,
		LastAccessed: m.LastAccessed,
	}

	if len(m.Associations) > 0 {
		raw, err := json.Marshal(m.Associations)
		if err != nil {
			return nil, fmt.Errorf("failed to encode associations for %s: %w", m.ID, err)
		}
		rec.Associations = string(raw)
	}
	if len(m.Metadata) > 0 {
		raw, err := json.Marshal(m.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode metadata for %s: %w", m.ID, err)
		}
		rec.Metadata = string(raw)
	}

	return rec, nil
}

// toMemory converts a snapshot row back to an in-memory record.
func (r *MuninMemory) toMemory() (*memory.Memory, error) {
	m := &memory.Memory{
		ID:           r.ID,
		Category:     memory.Type(r.Category),
		Content:      r.Content,
		CreatedAt:    r.CreatedAt,
		Importance:   r.Importance,
		AccessCount:  r.AccessCount,
		LastAccessed: r.LastAccessed,
	}

	if r.Associations != "" {
		if err := json.Unmarshal([]byte(r.Associations), &m.Associations); err != nil {
			return nil, fmt.Errorf("failed to decode associations for %s: %w", r.ID, err)
		}
	}
	if r.Metadata != "" {
		if err := json.Unmarshal([]byte(r.Metadata), &m.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for %s: %w", r.ID, err)
		}
	}

	return m, nil
}
