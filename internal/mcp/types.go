package mcp

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	State            string   `json:"state"`
	Zone             string   `json:"zone"`
	Target           string   `json:"target,omitempty"`
	CurrentWorkspace string   `json:"current_workspace"`
	Workspaces       []string `json:"workspaces"`
	HookInstalled    bool     `json:"hook_installed"`
	UptimeSeconds    int64    `json:"uptime_seconds"`
}

// ListWorkspacesInput is the input for the list_workspaces tool.
type ListWorkspacesInput struct{}

// ListWorkspacesOutput is the output for the list_workspaces tool.
type ListWorkspacesOutput struct {
	Workspaces []string `json:"workspaces"`
	Current    string   `json:"current"`
}

// SwitchWorkspaceInput is the input for the switch_workspace tool.
type SwitchWorkspaceInput struct {
	Workspace string `json:"workspace" jsonschema:"required,Workspace identifier as returned by list_workspaces"`
}

// StepWorkspaceInput is the input for the step_workspace tool.
type StepWorkspaceInput struct {
	Direction string `json:"direction" jsonschema:"required,next or prev"`
	Wrap      *bool  `json:"wrap,omitempty" jsonschema:"Wrap around at either end of the list (default: true)"`
}

// WorkspaceOutput reports the focused workspace after a switch.
type WorkspaceOutput struct {
	Current string `json:"current"`
}

// AdjustVolumeInput is the input for the adjust_volume tool.
type AdjustVolumeInput struct {
	Step int `json:"step" jsonschema:"required,Percent to add (negative lowers the volume)"`
}

// AdjustVolumeOutput is the output for the adjust_volume tool.
type AdjustVolumeOutput struct {
	Percent int `json:"percent"`
}
