// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package persistence

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/munin-mcp/munin/internal/memory"
)

// SnapshotStore persists full snapshots of a memory store. Each Save
// replaces the previous snapshot; the table always holds exactly the last
// saved state.
type SnapshotStore struct {
	db *gorm.DB
}

// NewSnapshotStore opens a connection and migrates the snapshot schema.
func NewSnapshotStore(cfg *Config) (*SnapshotStore, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&MuninMemory{}); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshot schema: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

// Save replaces the stored snapshot with the given memories, atomically.
func (s *SnapshotStore) Save(mems []*memory.Memory) error {
	rows := make([]*MuninMemory, 0, len(mems))
	for _, m := range mems {
		row, err := toRecord(m)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&MuninMemory{}).Error; err != nil {
			return fmt.Errorf("failed to clear snapshot: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(rows).Error; err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		return nil
	})
}

// Load reads the stored snapshot.
func (s *SnapshotStore) Load() ([]*memory.Memory, error) {
	var rows []MuninMemory
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	mems := make([]*memory.Memory, 0, len(rows))
	for i := range rows {
		m, err := rows[i].toMemory()
		if err != nil {
			return nil, err
		}
		mems = append(mems, m)
	}
	return mems, nil
}

// Close closes the underlying database connection.
func (s *SnapshotStore) Close() error {
	return Close(s.db)
}
