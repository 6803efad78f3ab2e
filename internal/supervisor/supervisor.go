// Package supervisor binds the control channel and the watcher engine to
// a running process: it writes the pid file, guards against a second
// instance racing to bind the same socket, and multiplexes SIGTERM, control
// commands, and change events with equal priority until an orderly
// shutdown is requested.
package supervisor

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"

	"github.com/aman-cerp/syncd/internal/config"
	"github.com/aman-cerp/syncd/internal/control"
	"github.com/aman-cerp/syncd/internal/pidfile"
	"github.com/aman-cerp/syncd/internal/slogging"
	"github.com/aman-cerp/syncd/internal/syncerrs"
	"github.com/aman-cerp/syncd/internal/watcher"
)

// Supervisor owns the process-level resources: the single-instance lock,
// the pid file, the control channel, the watcher engine, and logging.
type Supervisor struct {
	cfg   config.Config
	paths Paths

	lock    *flock.Flock
	pidFile *pidfile.PIDFile
	control *control.Server
	engine  *watcher.Engine

	logCleanup     func()
	streamsCleanup func()
}

// New acquires the single-instance lock, sets up logging, writes the pid
// file, and starts the control channel and watcher engine. Any failure
// here is a SupervisorError and fatal to the process.
func New(cfg config.Config) (*Supervisor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, syncerrs.SupervisorError("validate config", err)
	}
	paths := DerivePaths(cfg.Package)

	if err := os.MkdirAll(paths.Dir, 0o755); err != nil {
		return nil, syncerrs.SupervisorError("create package directory", err).WithDetail(paths.Dir)
	}

	lock := flock.New(paths.Lock)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, syncerrs.SupervisorError("acquire single-instance lock", err).WithDetail(paths.Lock)
	}
	if !locked {
		return nil, syncerrs.SupervisorError("another syncd supervisor already holds the lock", nil).WithDetail(paths.Lock)
	}

	logger, cleanup, err := slogging.Setup(slogging.DefaultConfig(paths.Out))
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	slog.SetDefault(logger)

	streamsCleanup, err := redirectStdStreams(paths.Out, paths.Err)
	if err != nil {
		cleanup()
		_ = lock.Unlock()
		return nil, err
	}

	pf := pidfile.New(paths.Pid)
	if err := pf.Write(); err != nil {
		streamsCleanup()
		cleanup()
		_ = lock.Unlock()
		return nil, err
	}

	if err := dropPrivileges(); err != nil {
		_ = pf.Remove()
		streamsCleanup()
		cleanup()
		_ = lock.Unlock()
		return nil, err
	}

	ctrl, err := control.Start(paths.Socket)
	if err != nil {
		_ = pf.Remove()
		streamsCleanup()
		cleanup()
		_ = lock.Unlock()
		return nil, err
	}

	eng := watcher.New(watcher.Options{
		PollInterval:   cfg.PollInterval,
		UseAccelerator: cfg.UseAccelerator,
		ExtraIgnore:    cfg.ExtraIgnore,
	})

	return &Supervisor{
		cfg:            cfg,
		paths:          paths,
		lock:           lock,
		pidFile:        pf,
		control:        ctrl,
		engine:         eng,
		logCleanup:     cleanup,
		streamsCleanup: streamsCleanup,
	}, nil
}

// Paths exposes the derived socket/pid/log layout, e.g. for status
// reporting.
func (s *Supervisor) Paths() Paths {
	return s.paths
}

// Run multiplexes SIGTERM, control commands, and watcher change events
// with equal priority until a Shutdown command or SIGTERM arrives, then
// performs an orderly shutdown and returns.
func (s *Supervisor) Run(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	slog.Info("syncd supervisor starting",
		slog.String("socket", s.paths.Socket), slog.String("pid_file", s.paths.Pid))

	for {
		select {
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down")
			return s.shutdown()

		case <-sigCh:
			slog.Info("received SIGTERM, shutting down")
			return s.shutdown()

		case cmd, ok := <-s.control.Queue():
			if !ok {
				return s.shutdown()
			}
			if cmd.Kind == watcher.CommandShutdown {
				slog.Info("shutdown command received", slog.String("caller", cmd.Caller))
				return s.shutdown()
			}
			s.handleCommand(cmd)

		case ev, ok := <-s.engine.Events():
			if !ok {
				continue
			}
			slog.Info("change event",
				slog.String("kind", ev.Kind.String()), slog.String("path", ev.Path), slog.String("root", ev.Root))

		case err, ok := <-s.engine.Errors():
			if ok {
				slog.Error("watcher scan error", slog.String("error", err.Error()))
			}
		}
	}
}

func (s *Supervisor) handleCommand(cmd watcher.Command) {
	switch cmd.Kind {
	case watcher.CommandOpen:
		if err := s.engine.Watch(cmd.Path); err != nil {
			slog.Warn("open failed", slog.String("path", cmd.Path), slog.String("error", err.Error()))
		}
	case watcher.CommandClose:
		if err := s.engine.Unwatch(cmd.Path); err != nil {
			slog.Warn("close failed", slog.String("path", cmd.Path), slog.String("error", err.Error()))
		}
	}
}

// shutdown stops the control channel, drains every watcher task, removes
// the pid file, releases the single-instance lock, and flushes logs.
func (s *Supervisor) shutdown() error {
	s.control.Shutdown()
	s.engine.Shutdown()
	if err := s.pidFile.Remove(); err != nil {
		slog.Warn("failed to remove pid file", slog.String("error", err.Error()))
	}
	if err := s.lock.Unlock(); err != nil {
		slog.Warn("failed to release single-instance lock", slog.String("error", err.Error()))
	}
	if s.logCleanup != nil {
		s.logCleanup()
	}
	if s.streamsCleanup != nil {
		s.streamsCleanup()
	}
	return nil
}

// Engine exposes the watcher engine for status reporting (e.g. the
// number of currently watched roots) in a future in-process caller; the
// CLI itself talks to a running supervisor only via the control socket.
func (s *Supervisor) Engine() *watcher.Engine {
	return s.engine
}
