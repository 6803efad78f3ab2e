package control

import (
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/aman-cerp/syncd/internal/syncerrs"
	"github.com/aman-cerp/syncd/internal/watcher"
)

// dialTimeout bounds how long a client waits to connect; the control
// channel itself imposes no read timeout, but a caller still needs to
// fail fast against a dead socket.
const dialTimeout = 2 * time.Second

// Send opens one connection to the control socket at path, writes cmd in
// the wire format, and closes the connection — exactly one command per
// connection, no response is read back.
func Send(path string, cmd watcher.Command) error {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return syncerrs.SupervisorError("connect to control socket", err).WithDetail(path)
	}
	defer func() { _ = conn.Close() }()

	payload, err := Encode(cmd)
	if err != nil {
		return err
	}
	if _, err := conn.Write(payload); err != nil {
		return syncerrs.SupervisorError("write command", err).WithDetail(path)
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		_ = uc.CloseWrite()
	}
	return nil
}

// IsRunning reports whether a control socket at path currently accepts
// connections.
func IsRunning(path string) bool {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// DefaultCaller returns a fresh identifier for a Shutdown command's
// caller field when the CLI invocation doesn't supply one explicitly.
func DefaultCaller() string {
	return uuid.NewString()
}
