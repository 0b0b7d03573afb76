// Package mcp exposes the daemon's workspace and volume controls as MCP tools.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/holdswipe/internal/ipc"
	"github.com/1broseidon/holdswipe/internal/wm"
)

const (
	ServerName    = "holdswipe"
	ServerVersion = "0.1.0"
)

// Daemon is the part of the IPC client the tools use.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListWorkspaces() (*ipc.WorkspacesData, error)
	SetWorkspace(id string) error
	StepWorkspace(dir wm.Direction, wrap bool) error
	AdjustVolume(step int) (int, error)
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server forwarding tool calls to the running daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates an MCP server backed by daemon.
func NewServer(daemon Daemon) *Server {
	s := &Server{daemon: daemon}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the holdswipe daemon state: gesture state and zone, focused workspace, known workspaces and whether the input hook is installed.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_workspaces",
		Description: "List workspace identifiers in order, with the focused one.",
	}, s.handleListWorkspaces)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switch_workspace",
		Description: "Switch to a workspace by identifier.",
	}, s.handleSwitchWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "step_workspace",
		Description: "Move to the next or previous workspace. Wraps around at either end unless wrap is false.",
	}, s.handleStepWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "adjust_volume",
		Description: "Change the output volume by a signed percent step and return the resulting level (0-100).",
	}, s.handleAdjustVolume)
}
