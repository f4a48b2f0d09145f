// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/munin-mcp/munin/internal/memory"
)

// NewStatsTool creates the munin_stats tool definition
func NewStatsTool() mcp.Tool {
	return mcp.NewTool("munin_stats",
		mcp.WithDescription("Show aggregate statistics about stored memories: totals, per-category counts, access activity, and average importance."),
	)
}

// StatsHandler handles the munin_stats tool
func StatsHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats := ctx.Store.Stats()

		var sb strings.Builder
		sb.WriteString("# Memory statistics\n\n")
		sb.WriteString(fmt.Sprintf("**Total memories**: %d\n", stats.TotalMemories))
		sb.WriteString(fmt.Sprintf("**Total accesses**: %d\n", stats.TotalAccessCount))
		sb.WriteString(fmt.Sprintf("**Average importance**: %.3f\n\n", stats.AverageImportance))

		sb.WriteString("**By category**:\n")
		for _, cat := range memory.ValidTypes() {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", cat, stats.ByCategory[cat]))
		}

		policy := ctx.Store.Policy()
		sb.WriteString(fmt.Sprintf("\n**Retention policy**: %s\n", policy.Kind))

		return mcp.NewToolResultText(sb.String()), nil
	}
}
