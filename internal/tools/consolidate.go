// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewConsolidateTool creates the munin_consolidate tool definition
func NewConsolidateTool() mcp.Tool {
	return mcp.NewTool("munin_consolidate",
		mcp.WithDescription("Run a consolidation pass now instead of waiting for the background schedule: prune memories per the retention policy and merge near-duplicates. Reports the before/after totals."),
	)
}

// ConsolidateHandler handles the munin_consolidate tool
func ConsolidateHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		before := ctx.Store.Stats().TotalMemories

		if err := ctx.Store.Consolidate(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("consolidation failed: %v", err)), nil
		}

		after := ctx.Store.Stats().TotalMemories

		if ctx.HasSnapshots() {
			if err := ctx.Snapshots.Save(ctx.Store.Dump()); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("consolidated (%d -> %d memories) but snapshot save failed: %v", before, after, err)), nil
			}
		}

		return mcp.NewToolResultText(fmt.Sprintf("Consolidated: %d -> %d memories", before, after)), nil
	}
}
