package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/holdswipe/internal/wm"
)

// requestTimeout bounds a single manual action.
const requestTimeout = 10 * time.Second

// Controller is the daemon surface exposed over the socket.
type Controller interface {
	Status() StatusData
	Workspaces() WorkspacesData
	SetWorkspace(ctx context.Context, id string) error
	StepWorkspace(ctx context.Context, dir wm.Direction, wrap bool) error
	AdjustVolume(ctx context.Context, step int) (int, error)
	Refresh()
	Reload() error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	ctrl         Controller
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on socketPath.
func NewServer(socketPath string, ctrl Controller) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		startTime:  time.Now(),
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()
	return nil
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandListWorkspaces:
		return ok(s.ctrl.Workspaces())
	case CommandSetWorkspace:
		return s.handleSetWorkspace(req.Payload)
	case CommandStepWorkspace:
		return s.handleStepWorkspace(req.Payload)
	case CommandAdjustVolume:
		return s.handleAdjustVolume(req.Payload)
	case CommandRefresh:
		s.ctrl.Refresh()
		return ok(nil)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")
	if err := s.ctrl.Reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	log.Println("IPC: Config reloaded successfully")
	return ok(nil)
}

func (s *Server) handleGetStatus() *Response {
	status := s.ctrl.Status()
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	status.DaemonRunning = true
	return ok(status)
}

func (s *Server) handleSetWorkspace(payload json.RawMessage) *Response {
	var req SetWorkspacePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid set workspace payload: %v", err))
	}
	if strings.TrimSpace(req.Workspace) == "" {
		return NewErrorResponse("workspace is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := s.ctrl.SetWorkspace(ctx, req.Workspace); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to switch workspace: %v", err))
	}
	return ok(nil)
}

func (s *Server) handleStepWorkspace(payload json.RawMessage) *Response {
	var req StepWorkspacePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid step workspace payload: %v", err))
	}
	dir, err := ParseDirection(req.Direction)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := s.ctrl.StepWorkspace(ctx, dir, req.Wrap); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to step workspace: %v", err))
	}
	return ok(nil)
}

func (s *Server) handleAdjustVolume(payload json.RawMessage) *Response {
	var req AdjustVolumePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid adjust volume payload: %v", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	percent, err := s.ctrl.AdjustVolume(ctx, req.Step)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to adjust volume: %v", err))
	}
	return ok(VolumeData{Percent: percent})
}

// ParseDirection maps "next"/"prev" to a direction.
func ParseDirection(s string) (wm.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "next", "right", "+":
		return wm.DirNext, nil
	case "prev", "previous", "left", "-":
		return wm.DirPrev, nil
	default:
		return wm.DirNext, fmt.Errorf("direction must be next or prev, got %q", s)
	}
}

func ok(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop closes the listener and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
