package cmd

import (
	"encoding/json"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/aman-cerp/syncd/internal/config"
	"github.com/aman-cerp/syncd/internal/control"
	"github.com/aman-cerp/syncd/internal/output"
	"github.com/aman-cerp/syncd/internal/pidfile"
	"github.com/aman-cerp/syncd/internal/supervisor"
)

// statusResult is the JSON shape for `syncd status --json`.
type statusResult struct {
	Running bool   `json:"running"`
	PID     int    `json:"pid,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
	Socket  string `json:"socket"`
	PidPath string `json:"pid_path"`
}

func newStatusCmd() *cobra.Command {
	var pkg string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show syncd daemon status",
		Long: `Show whether the syncd daemon is running, its process id, uptime, and
the control socket it is listening on.

The control channel is fire-and-forget, so status is inferred from the
pid file and a liveness probe of the socket rather than a query
answered by the daemon itself.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, pkg, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&pkg, "package", config.Default().Package, "temp-dir package name the daemon is running under")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func runStatus(cmd *cobra.Command, pkg string, jsonOutput bool) error {
	out := output.New(cmd.OutOrStdout())
	paths := supervisor.DerivePaths(pkg)
	pf := pidfile.New(paths.Pid)

	running := pf.IsRunning() && control.IsRunning(paths.Socket)
	result := statusResult{Running: running, Socket: paths.Socket, PidPath: paths.Pid}

	if running {
		if pid, err := pf.Read(); err == nil {
			result.PID = pid
		}
		if info, err := os.Stat(paths.Pid); err == nil {
			result.Uptime = humanize.Time(info.ModTime())
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if !running {
		out.Statusf("", "syncd daemon is %s", out.Stopped())
		out.Status("💡", "Run 'syncd daemon start' to start it")
		return nil
	}

	out.Statusf("", "syncd daemon is %s", out.Running())
	out.Statusf("", "  PID:    %d", result.PID)
	out.Statusf("", "  Uptime: %s", result.Uptime)
	out.Statusf("", "  Socket: %s", result.Socket)
	return nil
}
