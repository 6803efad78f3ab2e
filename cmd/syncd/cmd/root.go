// Package cmd provides the syncd CLI commands: init, open, close,
// shutdown, status, version, and the daemon subcommand group that
// actually hosts the supervisor. This is a thin wrapper; the hard
// engineering lives in internal/watcher, internal/control, and
// internal/supervisor.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aman-cerp/syncd/pkg/version"
)

// NewRootCmd creates the root "syncd" command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "syncd",
		Short:   "Background directory synchronization agent",
		Version: version.Version,
		Long: `syncd watches one or more directory roots, detects content changes
while honoring .gitignore rules, and emits a stream of Created/Modified/
Deleted events for downstream consumers.

A companion process drives a running agent through a local control
channel: open a path, close a path, or shut the agent down.`,
	}
	cmd.SetVersionTemplate("syncd version {{.Version}}\n")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newOpenCmd())
	cmd.AddCommand(newCloseCmd())
	cmd.AddCommand(newShutdownCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newDaemonCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
