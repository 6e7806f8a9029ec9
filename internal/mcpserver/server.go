package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all ClientPulse tools registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("clientpulse", "1.0.0")
	client := NewPulseClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolRunSimulation, h.HandleRunSimulation)
	s.AddTool(ToolGetClientHealth, h.HandleGetClientHealth)
	s.AddTool(ToolListClients, h.HandleListClients)
	s.AddTool(ToolGetBenchmarks, h.HandleGetBenchmarks)

	return s
}
