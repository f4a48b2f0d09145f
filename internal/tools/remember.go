// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/munin-mcp/munin/internal/memory"
)

// NewRememberTool creates the munin_remember tool definition
func NewRememberTool() mcp.Tool {
	return mcp.NewTool("munin_remember",
		mcp.WithDescription("Store a new memory. Use this whenever you learn something worth keeping: a fact, an event, a procedure, an observation. The memory becomes immediately searchable via munin_recall."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("What to remember. Plain text; keywords are extracted automatically for recall."),
		),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Memory category, one of: "+categoryList()),
		),
		mcp.WithNumber("importance",
			mcp.Description("How important this memory is, 0.0 to 1.0. Default: 0.5"),
		),
		mcp.WithString("associations",
			mcp.Description("Comma-separated tags linking this memory to topics or other memories. Example: 'project-alpha, deployments'"),
		),
	)
}

// RememberHandler handles the munin_remember tool
func RememberHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content := request.GetString("content", "")
		category := request.GetString("category", "")
		importance := request.GetFloat("importance", 0.5)
		associations := splitList(request.GetString("associations", ""))

		if content == "" {
			return mcp.NewToolResultError("'content' is required"), nil
		}
		if !memory.IsValidType(memory.Type(category)) {
			return mcp.NewToolResultError(fmt.Sprintf("'category' must be one of: %s", categoryList())), nil
		}

		stored, err := ctx.Store.Store(&memory.Memory{
			Category:     memory.Type(category),
			Content:      content,
			Importance:   importance,
			Associations: associations,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to store memory: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf(
			"Remembered (id: %s, category: %s, importance: %.2f)",
			stored.ID, stored.Category, stored.Importance)), nil
	}
}
