package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aman-cerp/syncd/internal/config"
	"github.com/aman-cerp/syncd/internal/control"
	"github.com/aman-cerp/syncd/internal/output"
	"github.com/aman-cerp/syncd/internal/supervisor"
	"github.com/aman-cerp/syncd/internal/watcher"
)

func newShutdownCmd() *cobra.Command {
	var pkg, caller string

	cmd := &cobra.Command{
		Use:   "shutdown",
		Short: "Ask the running syncd daemon to exit",
		Long: `Send a Shutdown command over the control channel. The daemon stops
accepting connections, drains every watched root, removes its pid file,
and exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShutdown(cmd, pkg, caller)
		},
	}

	cmd.Flags().StringVar(&pkg, "package", config.Default().Package, "temp-dir package name the daemon is running under")
	cmd.Flags().StringVar(&caller, "caller", "", "identifier recorded against this shutdown request (default: random)")
	return cmd
}

func runShutdown(cmd *cobra.Command, pkg, caller string) error {
	out := output.New(cmd.OutOrStdout())
	paths := supervisor.DerivePaths(pkg)

	if !control.IsRunning(paths.Socket) {
		out.Status("", "syncd daemon is not running")
		return nil
	}

	if caller == "" {
		caller = control.DefaultCaller()
	}

	if err := control.Send(paths.Socket, watcher.Command{Kind: watcher.CommandShutdown, Caller: caller}); err != nil {
		return fmt.Errorf("send Shutdown command: %w", err)
	}

	out.Success("Shutdown requested")
	return nil
}
