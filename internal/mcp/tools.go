package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/holdswipe/internal/ipc"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{
		State:            status.State,
		Zone:             status.Zone,
		Target:           status.Target,
		CurrentWorkspace: status.CurrentWorkspace,
		Workspaces:       nonNil(status.Workspaces),
		HookInstalled:    status.HookInstalled,
		UptimeSeconds:    status.UptimeSeconds,
	}, nil
}

func (s *Server) handleListWorkspaces(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWorkspacesInput) (*mcpsdk.CallToolResult, ListWorkspacesOutput, error) {
	data, err := s.daemon.ListWorkspaces()
	if err != nil {
		return nil, ListWorkspacesOutput{}, err
	}
	return nil, ListWorkspacesOutput{Workspaces: nonNil(data.Workspaces), Current: data.Current}, nil
}

func (s *Server) handleSwitchWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, args SwitchWorkspaceInput) (*mcpsdk.CallToolResult, WorkspaceOutput, error) {
	id := strings.TrimSpace(args.Workspace)
	if id == "" {
		return nil, WorkspaceOutput{}, fmt.Errorf("workspace is required")
	}
	if err := s.daemon.SetWorkspace(id); err != nil {
		return nil, WorkspaceOutput{}, err
	}
	return nil, s.current(), nil
}

func (s *Server) handleStepWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, args StepWorkspaceInput) (*mcpsdk.CallToolResult, WorkspaceOutput, error) {
	dir, err := ipc.ParseDirection(args.Direction)
	if err != nil {
		return nil, WorkspaceOutput{}, err
	}
	wrap := true
	if args.Wrap != nil {
		wrap = *args.Wrap
	}
	if err := s.daemon.StepWorkspace(dir, wrap); err != nil {
		return nil, WorkspaceOutput{}, err
	}
	return nil, s.current(), nil
}

func (s *Server) handleAdjustVolume(_ context.Context, _ *mcpsdk.CallToolRequest, args AdjustVolumeInput) (*mcpsdk.CallToolResult, AdjustVolumeOutput, error) {
	if args.Step == 0 {
		return nil, AdjustVolumeOutput{}, fmt.Errorf("step must be non-zero")
	}
	percent, err := s.daemon.AdjustVolume(args.Step)
	if err != nil {
		return nil, AdjustVolumeOutput{}, err
	}
	return nil, AdjustVolumeOutput{Percent: percent}, nil
}

// current reads the focused workspace back; a failed read leaves it empty.
func (s *Server) current() WorkspaceOutput {
	data, err := s.daemon.ListWorkspaces()
	if err != nil {
		return WorkspaceOutput{}
	}
	return WorkspaceOutput{Current: data.Current}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
