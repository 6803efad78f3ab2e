package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aman-cerp/syncd/internal/config"
	"github.com/aman-cerp/syncd/internal/control"
	"github.com/aman-cerp/syncd/internal/output"
	"github.com/aman-cerp/syncd/internal/supervisor"
	"github.com/aman-cerp/syncd/internal/watcher"
)

func newOpenCmd() *cobra.Command {
	var pkg string

	cmd := &cobra.Command{
		Use:   "open [path]",
		Short: "Begin watching a directory root",
		Long: `Send an Open command to the running syncd daemon, asking it to start
watching the given path. With no argument the current working directory
is used.

A path that is already watched, or is a descendant of one already
watched, is rejected. A path that is a strict ancestor of one or more
watched roots subsumes them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := argOrCwd(args)
			if err != nil {
				return err
			}
			return runOpen(cmd, path, pkg)
		},
	}

	cmd.Flags().StringVar(&pkg, "package", config.Default().Package, "temp-dir package name the daemon is running under")
	return cmd
}

// argOrCwd returns the single positional path argument, or the current
// working directory when none was given.
func argOrCwd(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current directory: %w", err)
	}
	return cwd, nil
}

func runOpen(cmd *cobra.Command, path, pkg string) error {
	out := output.New(cmd.OutOrStdout())
	paths := supervisor.DerivePaths(pkg)

	if !control.IsRunning(paths.Socket) {
		out.Error("syncd daemon is not running")
		out.Status("💡", "Run 'syncd daemon start' first")
		return fmt.Errorf("daemon not running")
	}

	if err := control.Send(paths.Socket, watcher.Command{Kind: watcher.CommandOpen, Path: path}); err != nil {
		return fmt.Errorf("send Open command: %w", err)
	}

	out.Successf("Requested watch on %s", path)
	return nil
}
