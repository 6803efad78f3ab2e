package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aman-cerp/syncd/internal/config"
	"github.com/aman-cerp/syncd/internal/output"
)

const configTemplate = `# syncd configuration. All fields are optional; syncd fills sensible
# defaults for anything omitted.

poll_interval: %s
package: %s
use_accelerator: %t
extra_ignore: []
`

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .syncd.yaml configuration template",
		Long: `Write a .syncd.yaml configuration template in the current directory,
with the built-in defaults spelled out for editing.

A config file is never required: syncd works with defaults out of the
box. Use this to pin a non-default poll interval, package name, or
extra ignore patterns.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing .syncd.yaml")
	return cmd
}

func runInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get current directory: %w", err)
	}
	path := filepath.Join(cwd, ".syncd.yaml")

	if !force {
		if _, err := os.Stat(path); err == nil {
			out.Warning(".syncd.yaml already exists")
			out.Status("💡", "Use --force to overwrite")
			return nil
		}
	}

	def := config.Default()
	content := fmt.Sprintf(configTemplate, def.PollInterval, def.Package, def.UseAccelerator)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write .syncd.yaml: %w", err)
	}

	out.Successf("Created %s", path)
	return nil
}
