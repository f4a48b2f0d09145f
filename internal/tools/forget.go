// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewForgetTool creates the munin_forget tool definition
func NewForgetTool() mcp.Tool {
	return mcp.NewTool("munin_forget",
		mcp.WithDescription("Remove a memory permanently. Forgetting an unknown id is not an error; the operation simply does nothing."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The id of the memory to forget"),
		),
	)
}

// ForgetHandler handles the munin_forget tool
func ForgetHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := request.GetString("id", "")
		if id == "" {
			return mcp.NewToolResultError("'id' is required"), nil
		}

		if err := ctx.Store.Delete(id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to forget memory: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Forgot %s", id)), nil
	}
}
