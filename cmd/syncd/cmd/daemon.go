package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aman-cerp/syncd/internal/config"
	"github.com/aman-cerp/syncd/internal/output"
	"github.com/aman-cerp/syncd/internal/pidfile"
	"github.com/aman-cerp/syncd/internal/supervisor"
)

func newDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the syncd background agent",
		Long: `The daemon hosts the watcher engine and the control channel socket.

Commands:
  start   Start the daemon (runs in background by default)
  stop    Stop the running daemon
  status  Show daemon status

Examples:
  syncd daemon start      # Start daemon in background
  syncd daemon start -f   # Run in foreground (for debugging)
  syncd daemon status     # Check if daemon is running
  syncd daemon stop       # Stop the daemon`,
	}

	cmd.AddCommand(newDaemonStartCmd())
	cmd.AddCommand(newDaemonStopCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

func newDaemonStartCmd() *cobra.Command {
	var foreground bool
	var cfgPath, pkg string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the background agent",
		Long: `Start the watcher engine and control channel.

Use --foreground for debugging or to see logs in real-time; the
default detaches into the background and re-execs itself.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonStart(cmd, foreground, cfgPath, pkg)
		},
	}

	cmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "run in foreground (don't daemonize)")
	cmd.Flags().StringVar(&cfgPath, "config", "", "path to a syncd config YAML file")
	cmd.Flags().StringVar(&pkg, "package", "", "override the temp-dir package name")
	return cmd
}

func newDaemonStopCmd() *cobra.Command {
	var pkg string

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		Long:  `Send SIGTERM to the running daemon for graceful shutdown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonStop(cmd, pkg)
		},
	}

	cmd.Flags().StringVar(&pkg, "package", config.Default().Package, "temp-dir package name the daemon is running under")
	return cmd
}

func loadConfig(cfgPath, pkgOverride string) (config.Config, error) {
	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return config.Config{}, err
		}
	}
	if pkgOverride != "" {
		cfg.Package = pkgOverride
	}
	return cfg, nil
}

func runDaemonStart(cmd *cobra.Command, foreground bool, cfgPath, pkg string) error {
	out := output.New(cmd.OutOrStdout())

	cfg, err := loadConfig(cfgPath, pkg)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	paths := supervisor.DerivePaths(cfg.Package)

	if pidfile.New(paths.Pid).IsRunning() {
		out.Status("", "syncd daemon is already running")
		return nil
	}

	if foreground {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out.Status("", "Starting syncd daemon in foreground...")
		out.Statusf("", "Socket: %s", paths.Socket)
		out.Statusf("", "Logs:   %s", paths.Out)
		out.Status("", "Press Ctrl+C to stop")
		out.Newline()

		sup, err := supervisor.New(cfg)
		if err != nil {
			return fmt.Errorf("start supervisor: %w", err)
		}
		return sup.Run(ctx)
	}

	out.Status("", "Starting syncd daemon in background...")

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("get executable path: %w", err)
	}

	args := []string{"daemon", "start", "--foreground"}
	if cfgPath != "" {
		args = append(args, "--config", cfgPath)
	}
	if cfg.Package != "" {
		args = append(args, "--package", cfg.Package)
	}

	bgCmd := exec.Command(execPath, args...)
	// Stdout/Stderr are discarded on the launcher's side, not the
	// daemon's: the re-exec'd process runs with --foreground and its
	// own supervisor.New immediately redirects its os.Stdout/os.Stderr
	// to paths.Out/paths.Err, so nothing written after startup is lost.
	bgCmd.Stdout = nil
	bgCmd.Stderr = nil
	bgCmd.Stdin = nil
	bgCmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := bgCmd.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- bgCmd.Wait() }()

	for i := 0; i < 50; i++ {
		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("daemon process exited unexpectedly: %w", err)
			}
			return fmt.Errorf("daemon process exited unexpectedly with code 0")
		default:
		}

		time.Sleep(100 * time.Millisecond)
		if pidfile.New(paths.Pid).IsRunning() {
			out.Successf("syncd daemon started (pid: %d)", bgCmd.Process.Pid)
			return nil
		}
	}

	return fmt.Errorf("daemon failed to start within timeout")
}

func runDaemonStop(cmd *cobra.Command, pkg string) error {
	out := output.New(cmd.OutOrStdout())
	paths := supervisor.DerivePaths(pkg)
	pf := pidfile.New(paths.Pid)

	if !pf.IsRunning() {
		out.Status("", "syncd daemon is not running")
		return nil
	}

	pid, err := pf.Read()
	if err != nil {
		return fmt.Errorf("read pid: %w", err)
	}

	if err := pf.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("stop daemon: %w", err)
	}

	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		if !pf.IsRunning() {
			out.Successf("syncd daemon stopped (was pid: %d)", pid)
			return nil
		}
	}

	out.Status("", "Daemon not responding, sending SIGKILL...")
	if err := pf.Signal(syscall.SIGKILL); err != nil {
		return fmt.Errorf("kill daemon: %w", err)
	}

	out.Success("syncd daemon killed")
	return nil
}
