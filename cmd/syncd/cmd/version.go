package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/aman-cerp/syncd/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print syncd version and build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func runVersion(cmd *cobra.Command, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(version.GetInfo())
	}

	_, err := cmd.OutOrStdout().Write([]byte(version.String() + "\n"))
	return err
}
