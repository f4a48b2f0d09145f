// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/munin-mcp/munin/internal/export"
	"github.com/munin-mcp/munin/internal/memory"
)

// NewExportTool creates the munin_export tool definition
func NewExportTool() mcp.Tool {
	return mcp.NewTool("munin_export",
		mcp.WithDescription("Export memories as markdown documents with YAML frontmatter, for moving them into files, other agents, or plain-text tooling. Export does not count as access."),
		mcp.WithString("category",
			mcp.Description("Limit the export to one category, one of: "+categoryList()),
		),
	)
}

// ExportHandler handles the munin_export tool
func ExportHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category := request.GetString("category", "")
		if category != "" && !memory.IsValidType(memory.Type(category)) {
			return mcp.NewToolResultError(fmt.Sprintf("'category' must be one of: %s", categoryList())), nil
		}

		mems := ctx.Store.Dump()
		if category != "" {
			filtered := mems[:0]
			for _, m := range mems {
				if m.Category == memory.Type(category) {
					filtered = append(filtered, m)
				}
			}
			mems = filtered
		}

		if len(mems) == 0 {
			return mcp.NewToolResultText("Nothing to export."), nil
		}

		out, err := export.ToMarkdownAll(mems)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
		}

		return mcp.NewToolResultText(out), nil
	}
}
