package control

import (
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/aman-cerp/syncd/internal/syncerrs"
	"github.com/aman-cerp/syncd/internal/watcher"
)

// queueCapacity is the bounded capacity of the internal command queue.
const queueCapacity = 100

// Server is a listener handle: a shutdown signal plus the queue receiver.
// Start removes any stale socket file at path before binding fresh.
type Server struct {
	path     string
	listener net.Listener
	queue    chan watcher.Command

	shutdownOnce sync.Once
	shutdownCh   chan struct{}
	wg           sync.WaitGroup
}

// Start binds a Unix-domain listener at path and spawns the accept loop.
func Start(path string) (*Server, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, syncerrs.SupervisorError("create socket directory", err).WithDetail(filepath.Dir(path))
	}
	_ = os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, syncerrs.SupervisorError("bind control socket", err).WithDetail(path)
	}

	s := &Server{
		path:       path,
		listener:   ln,
		queue:      make(chan watcher.Command, queueCapacity),
		shutdownCh: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.acceptLoop()

	return s, nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.shutdownCh:
			return
		default:
		}

		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdownCh:
				return
			default:
			}
			slog.Error("control: accept failed", slog.String("error", err.Error()))
			continue
		}

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// handleConn reads one connection to end-of-stream, decodes exactly one
// Command, and pushes it onto the queue. A malformed payload closes the
// connection without affecting the listener.
func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() { _ = conn.Close() }()

	payload, err := io.ReadAll(conn)
	if err != nil {
		slog.Warn("control: read failed", slog.String("error", err.Error()))
		return
	}

	cmd, err := Decode(payload)
	if err != nil {
		slog.Warn("control: protocol error", slog.String("error", err.Error()))
		return
	}

	select {
	case s.queue <- cmd:
	case <-s.shutdownCh:
	}
}

// Next returns the next queued command, or ok=false once Shutdown has
// drained the queue and no more commands will ever arrive.
func (s *Server) Next() (watcher.Command, bool) {
	cmd, ok := <-s.queue
	return cmd, ok
}

// Queue exposes the receiver directly for callers that prefer to select
// on it alongside other event sources (the supervisor's three-way
// multiplex).
func (s *Server) Queue() <-chan watcher.Command {
	return s.queue
}

// Shutdown fires the one-shot shutdown signal, stops accepting new
// connections, waits for in-flight connections to finish, and closes the
// queue. It removes the socket file so a later Start binds fresh. Safe to
// call more than once.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownCh)
		_ = s.listener.Close()
		s.wg.Wait()
		close(s.queue)
		_ = os.Remove(s.path)
	})
}
