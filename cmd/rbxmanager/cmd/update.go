package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rbxpi/rbxmanager/internal/service/update"
)

// updateCmd runs the update workflow without the interactive menu.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update an existing Rojo-based RbxPI installation.",
	Long: `Replaces an existing RbxPI installation with a selected release.

The currently deployed version is read from the installation's version
marker file; a missing marker is reported as "unknown" and the update
continues. The previous installation is removed before the new source tree
is moved into place.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := notifyContext(cmd)
		defer stop()

		return update.Run(ctx, &update.Options{ConfigPath: configPath})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(updateCmd)
}
