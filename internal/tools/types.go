// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"strings"

	"github.com/munin-mcp/munin/internal/memory"
	"github.com/munin-mcp/munin/internal/persistence"
)

// ToolContext holds shared dependencies for all tools
type ToolContext struct {
	Store     *memory.Store
	Snapshots *persistence.SnapshotStore // nil when persistence is disabled
}

// NewToolContext creates a new tool context
func NewToolContext(store *memory.Store, snapshots *persistence.SnapshotStore) *ToolContext {
	return &ToolContext{
		Store:     store,
		Snapshots: snapshots,
	}
}

// HasSnapshots returns true if snapshot persistence is available
func (tc *ToolContext) HasSnapshots() bool {
	return tc.Snapshots != nil
}

// splitList parses a comma-separated argument into trimmed, non-empty items
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// categoryList renders the valid categories for tool descriptions and errors
func categoryList() string {
	types := memory.ValidTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
