// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/munin-mcp/munin/internal/memory"
)

// NewReviseTool creates the munin_revise tool definition
func NewReviseTool() mcp.Tool {
	return mcp.NewTool("munin_revise",
		mcp.WithDescription("Update an existing memory in place: correct its content, adjust its importance, or replace its associations. Fails if the id does not exist - use munin_remember for new information."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The id of the memory to revise"),
		),
		mcp.WithString("content",
			mcp.Description("Replacement content. Leave empty to keep the current content."),
		),
		mcp.WithNumber("importance",
			mcp.Description("New importance, 0.0 to 1.0. Leave unset to keep the current value."),
		),
		mcp.WithString("associations",
			mcp.Description("Comma-separated tags replacing the current associations. Leave empty to keep them."),
		),
	)
}

// ReviseHandler handles the munin_revise tool
func ReviseHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := request.GetString("id", "")
		if id == "" {
			return mcp.NewToolResultError("'id' is required"), nil
		}

		var fields memory.UpdateFields
		if content := request.GetString("content", ""); content != "" {
			fields.Content = &content
		}
		if importance := request.GetFloat("importance", -1); importance >= 0 {
			fields.Importance = &importance
		}
		if associations := splitList(request.GetString("associations", "")); len(associations) > 0 {
			fields.Associations = associations
		}

		updated, err := ctx.Store.Update(id, fields)
		if err != nil {
			if errors.Is(err, memory.ErrNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("no memory with id '%s' - use munin_remember to store new information", id)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("failed to revise memory: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf(
			"Revised %s (importance: %.2f, accessed %d times)",
			updated.ID, updated.Importance, updated.AccessCount)), nil
	}
}
