package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rbxpi/rbxmanager/internal/service/install"
)

// installCmd runs the installation workflow without the interactive menu.
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install RbxPI into a new project.",
	Long: `Installs RbxPI into a project for either the Rojo or Roblox Studio environment.

You will be asked to pick a release version and a target environment.
Roblox Studio installs download the .rbxm asset to your downloads folder;
Rojo installs deploy the release's source tree into the project directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := notifyContext(cmd)
		defer stop()

		return install.Run(ctx, &install.Options{ConfigPath: configPath})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(installCmd)
}
