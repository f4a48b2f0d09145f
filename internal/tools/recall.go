// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/munin-mcp/munin/internal/memory"
)

// NewRecallTool creates the munin_recall tool definition
func NewRecallTool() mcp.Tool {
	return mcp.NewTool("munin_recall",
		mcp.WithDescription("Find and retrieve memories. This is the primary tool for getting information back - use it whenever you need to know something. Results are ranked by importance, keyword overlap, and recency. Retrieval counts as access and makes a memory more recent."),
		mcp.WithString("keywords",
			mcp.Description("Comma-separated search keywords. Example: 'deployment, rollback'"),
		),
		mcp.WithString("category",
			mcp.Description("Limit to one category, one of: "+categoryList()),
		),
		mcp.WithNumber("min_importance",
			mcp.Description("Only return memories at or above this importance, 0.0 to 1.0. Default: 0"),
		),
		mcp.WithNumber("since_hours",
			mcp.Description("Only return memories created within the last N hours. Default: no limit"),
		),
		mcp.WithString("associations",
			mcp.Description("Comma-separated tags; returns memories carrying any of them"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results. Default: 10"),
		),
	)
}

// RecallHandler handles the munin_recall tool
func RecallHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q := memory.Query{
			Category:      memory.Type(request.GetString("category", "")),
			MinImportance: request.GetFloat("min_importance", 0),
			Keywords:      splitList(request.GetString("keywords", "")),
			Associations:  splitList(request.GetString("associations", "")),
			Limit:         int(request.GetFloat("limit", 10.0)),
		}
		if sinceHours := request.GetFloat("since_hours", 0); sinceHours > 0 {
			q.Since = time.Now().Add(-time.Duration(sinceHours * float64(time.Hour)))
		}

		results, err := ctx.Store.Retrieve(q)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("recall failed: %v", err)), nil
		}

		if len(results) == 0 {
			if len(q.Keywords) > 0 {
				return mcp.NewToolResultText(fmt.Sprintf(
					"No memories found for keywords: %s\n\nTry fewer keywords, or drop the category filter.",
					strings.Join(q.Keywords, ", "))), nil
			}
			return mcp.NewToolResultText("No memories found."), nil
		}

		return mcp.NewToolResultText(formatRecallResults(results)), nil
	}
}

// formatRecallResults formats results for output
func formatRecallResults(results []*memory.Memory) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d memories:\n\n", len(results)))

	for i, m := range results {
		sb.WriteString(fmt.Sprintf("## %d. [%s] %s\n", i+1, m.Category, m.ID))
		sb.WriteString(fmt.Sprintf("**Importance**: %.2f | **Accessed**: %d times | **Created**: %s\n\n",
			m.Importance,
			m.AccessCount,
			m.CreatedAt.Format("2006-01-02")))

		if len(m.Associations) > 0 {
			sb.WriteString(fmt.Sprintf("**Associations**: %s\n\n", strings.Join(m.Associations, ", ")))
		}

		content := m.Content
		if len(content) > 1000 {
			content = content[:1000] + "\n\n... (content truncated)"
		}
		sb.WriteString(content)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}
