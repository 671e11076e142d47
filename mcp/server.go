package mcp

import (
	"github.com/aggieseek/seatwatch/api"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server represents the MCP server for seatwatch
type Server struct {
	server *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(svc Service) *Server {
	s := server.NewMCPServer("seatwatch", api.Version)

	registerTools(s, svc)

	return &Server{
		server: s,
	}
}

// Run starts the MCP server
func (s *Server) Run() error {
	return server.ServeStdio(s.server)
}

// registerTools registers all available tools with the MCP server
func registerTools(s *server.MCPServer, svc Service) {
	tools := InitTools(svc)
	s.AddTools(tools...)
}

func newServerTool(tool mcp.Tool, handler server.ToolHandlerFunc) server.ServerTool {
	return server.ServerTool{
		Tool:    tool,
		Handler: handler,
	}
}
