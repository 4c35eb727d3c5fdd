package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	aquariumpkg "github.com/unowned-ai/aquarium/pkg"
	"github.com/unowned-ai/aquarium/pkg/tanks"
)

type AquariumMCPServer struct {
	mcpServer *server.MCPServer
	keeper    *tanks.Keeper
}

// NewAquariumMCPServer builds an MCP server exposing the keeper's operations as tools.
func NewAquariumMCPServer(keeper *tanks.Keeper) *AquariumMCPServer {
	s := server.NewMCPServer(
		"Aquarium MCP Server",
		aquariumpkg.Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
	)
	RegisterTools(s, keeper)
	return &AquariumMCPServer{mcpServer: s, keeper: keeper}
}

// Start runs the stdio event loop until stdin closes.
func (s *AquariumMCPServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPRawServer exposes the raw mcp-go server (useful for additional configuration).
func (s *AquariumMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}

// Keeper returns the keeper the tools operate on.
func (s *AquariumMCPServer) Keeper() *tanks.Keeper {
	return s.keeper
}
