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

func newCloseCmd() *cobra.Command {
	var pkg string

	cmd := &cobra.Command{
		Use:   "close [path]",
		Short: "Stop watching a directory root",
		Long: `Send a Close command to the running syncd daemon, asking it to stop
watching the given path. With no argument the current working directory
is used. Closing a path that isn't watched is rejected.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := argOrCwd(args)
			if err != nil {
				return err
			}
			return runClose(cmd, path, pkg)
		},
	}

	cmd.Flags().StringVar(&pkg, "package", config.Default().Package, "temp-dir package name the daemon is running under")
	return cmd
}

func runClose(cmd *cobra.Command, path, pkg string) error {
	out := output.New(cmd.OutOrStdout())
	paths := supervisor.DerivePaths(pkg)

	if !control.IsRunning(paths.Socket) {
		out.Error("syncd daemon is not running")
		return fmt.Errorf("daemon not running")
	}

	if err := control.Send(paths.Socket, watcher.Command{Kind: watcher.CommandClose, Path: path}); err != nil {
		return fmt.Errorf("send Close command: %w", err)
	}

	out.Successf("Requested stop watching %s", path)
	return nil
}
