// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package server

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/munin-mcp/munin/internal/config"
	"github.com/munin-mcp/munin/internal/memory"
	"github.com/munin-mcp/munin/internal/persistence"
	"github.com/munin-mcp/munin/internal/tools"
)

// MCPServer wraps the mcp-go server with our configuration
type MCPServer struct {
	mcpServer *server.MCPServer
	config    *config.Config
	store     *memory.Store
}

// NewMCPServer creates a new MCP server instance and registers the memory
// tool surface against the given store.
func NewMCPServer(cfg *config.Config, store *memory.Store, snapshots *persistence.SnapshotStore) (*MCPServer, error) {
	mcpServer := server.NewMCPServer(
		"Munin",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv := &MCPServer{
		mcpServer: mcpServer,
		config:    cfg,
		store:     store,
	}

	srv.registerTools(tools.NewToolContext(store, snapshots))

	return srv, nil
}

// registerTools registers the memory tools. The tools express intent rather
// than implementation, making them easier for LLMs to use correctly.
func (s *MCPServer) registerTools(toolCtx *tools.ToolContext) {
	// munin_remember: store information - "Keep this for later"
	s.mcpServer.AddTool(tools.NewRememberTool(), tools.RememberHandler(toolCtx))

	// munin_recall: ranked retrieval - "What do I know about X?"
	s.mcpServer.AddTool(tools.NewRecallTool(), tools.RecallHandler(toolCtx))

	// munin_revise: in-place correction - "Actually, it's like this"
	s.mcpServer.AddTool(tools.NewReviseTool(), tools.ReviseHandler(toolCtx))

	// munin_forget: removal - "No longer relevant"
	s.mcpServer.AddTool(tools.NewForgetTool(), tools.ForgetHandler(toolCtx))

	// munin_stats: aggregate view of the store
	s.mcpServer.AddTool(tools.NewStatsTool(), tools.StatsHandler(toolCtx))

	// munin_consolidate: run a retention/merge pass on demand
	s.mcpServer.AddTool(tools.NewConsolidateTool(), tools.ConsolidateHandler(toolCtx))

	// munin_export: memories as markdown with frontmatter
	s.mcpServer.AddTool(tools.NewExportTool(), tools.ExportHandler(toolCtx))
}

// GetMCPServer returns the underlying MCP server
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// GetStore returns the memory store backing this server
func (s *MCPServer) GetStore() *memory.Store {
	return s.store
}
