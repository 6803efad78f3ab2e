// Package pidfile manages the daemon's liveness marker: the process id,
// written as ASCII decimal to a conventional path, read back by callers
// that probe for an already-running daemon and infer liveness from
// whether signal 0 succeeds against the stored pid.
package pidfile

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/renameio"

	"github.com/aman-cerp/syncd/internal/syncerrs"
)

// ErrNotFound is returned by Read when the pid file does not exist.
var ErrNotFound = errors.New("pid file not found")

// PIDFile manages a single daemon process-id file at path.
type PIDFile struct {
	path string
}

// New returns a PIDFile manager for path.
func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the pid file's filesystem path.
func (p *PIDFile) Path() string {
	return p.path
}

// Write atomically writes the current process's pid to the file,
// creating its parent directory if needed. An atomic rename (via
// renameio) avoids a reader ever observing a torn write.
func (p *PIDFile) Write() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return syncerrs.SupervisorError("create pid directory", err).WithDetail(filepath.Dir(p.path))
	}
	pid := strconv.Itoa(os.Getpid())
	if err := renameio.WriteFile(p.path, []byte(pid), 0o644); err != nil {
		return syncerrs.SupervisorError("write pid file", err).WithDetail(p.path)
	}
	return nil
}

// Read returns the pid stored in the file. Trailing whitespace is
// tolerated.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotFound
		}
		return 0, syncerrs.SupervisorError("read pid file", err).WithDetail(p.path)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, syncerrs.SupervisorError("parse pid file", err).WithDetail(p.path)
	}
	return pid, nil
}

// Remove deletes the pid file. Removing an absent file is not an error.
func (p *PIDFile) Remove() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return syncerrs.SupervisorError("remove pid file", err).WithDetail(p.path)
	}
	return nil
}

// IsRunning reports whether the pid file names a live process. A missing
// file, an unparsable file, or a process that no longer answers signal 0
// all report false.
func (p *PIDFile) IsRunning() bool {
	pid, err := p.Read()
	if err != nil {
		return false
	}
	return processExists(pid)
}

// Signal sends sig to the process named by the pid file.
func (p *PIDFile) Signal(sig syscall.Signal) error {
	pid, err := p.Read()
	if err != nil {
		return err
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return syncerrs.SupervisorError("find process", err).WithDetail(strconv.Itoa(pid))
	}
	if err := process.Signal(sig); err != nil {
		return syncerrs.SupervisorError("signal process", err).WithDetail(strconv.Itoa(pid))
	}
	return nil
}

// processExists probes liveness by sending signal 0, the conventional
// Unix no-op signal used purely to test permission/existence.
func processExists(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
