// Package mcpserver exposes the table catalog as MCP tools so agents can
// list tables and read rows.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kyleking/filter-flow/internal/catalog"
	"github.com/kyleking/filter-flow/internal/logging"
)

const (
	serverName = "filter-flow"

	toolListTables = "list_tables"
	toolGetRows    = "get_rows"
)

// Server is the MCP server for the table catalog
type Server struct {
	mcp      *server.MCPServer
	provider catalog.Provider
}

// New creates an MCP server answering from provider
func New(provider catalog.Provider, version string) *Server {
	s := &Server{
		provider: provider,
		mcp: server.NewMCPServer(
			serverName,
			version,
			server.WithToolCapabilities(true),
		),
	}

	s.registerTools()

	return s
}

// ServeStdio serves on stdin/stdout until the client disconnects
func (s *Server) ServeStdio() error {
	logging.Infof("Starting MCP stdio server")
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool(toolListTables,
		mcp.WithDescription("List every table with its columns and their data types, in display order"),
	), s.handleListTables)

	s.mcp.AddTool(mcp.NewTool(toolGetRows,
		mcp.WithDescription("Get the rows of a table by exact name. Unknown names return an empty list."),
		mcp.WithString("table", mcp.Description("Exact table name"), mcp.Required()),
	), s.handleGetRows)
}

func (s *Server) handleListTables(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tables, err := s.provider.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	return jsonResult(tables)
}

func (s *Server) handleGetRows(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, ok := req.GetArguments()["table"].(string)
	if !ok {
		return nil, fmt.Errorf("table is required")
	}

	rows, err := s.provider.GetRows(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("get rows: %w", err)
	}

	return jsonResult(rows)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	return textResult(string(data)), nil
}
