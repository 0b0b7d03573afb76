package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload         CommandType = "RELOAD"
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandListWorkspaces CommandType = "LIST_WORKSPACES"
	CommandSetWorkspace   CommandType = "SET_WORKSPACE"
	CommandStepWorkspace  CommandType = "STEP_WORKSPACE"
	CommandAdjustVolume   CommandType = "ADJUST_VOLUME"
	CommandRefresh        CommandType = "REFRESH"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	State            string   `json:"state"`
	Zone             string   `json:"zone"`
	SessionID        string   `json:"session_id,omitempty"`
	HeldForMs        int64    `json:"held_for_ms,omitempty"`
	Target           string   `json:"target,omitempty"`
	CurrentWorkspace string   `json:"current_workspace"`
	Workspaces       []string `json:"workspaces"`
	HookInstalled    bool     `json:"hook_installed"`
	HookError        string   `json:"hook_error,omitempty"`
	TriggerButton    int      `json:"trigger_button"`
	UptimeSeconds    int64    `json:"uptime_seconds"`
	DaemonRunning    bool     `json:"daemon_running"`
}

// WorkspacesData represents the data returned by LIST_WORKSPACES
type WorkspacesData struct {
	Workspaces []string `json:"workspaces"`
	Current    string   `json:"current"`
}

type SetWorkspacePayload struct {
	Workspace string `json:"workspace"`
}

type StepWorkspacePayload struct {
	Direction string `json:"direction"` // "next" or "prev"
	Wrap      bool   `json:"wrap,omitempty"`
}

type AdjustVolumePayload struct {
	Step int `json:"step"`
}

// VolumeData represents the data returned by ADJUST_VOLUME
type VolumeData struct {
	Percent int `json:"percent"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
