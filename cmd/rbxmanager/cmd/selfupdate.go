package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rbxpi/rbxmanager/internal/service/selfupdate"
)

// checkOnly reports whether a newer manager version exists without applying it.
var checkOnly bool

// selfupdateCmd updates the rbxmanager binary itself.
var selfupdateCmd = &cobra.Command{
	Use:   "selfupdate",
	Short: "Update the rbxmanager binary itself.",
	Long: `Checks the manager's own releases for a newer version and, on
confirmation, downloads the platform binary and swaps the running
executable in place.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := notifyContext(cmd)
		defer stop()

		return selfupdate.Run(ctx, &selfupdate.Options{
			ConfigPath: configPath,
			CheckOnly:  checkOnly,
		})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	selfupdateCmd.Flags().BoolVar(&checkOnly, "check", false, "only check whether a newer version exists")
	rootCmd.AddCommand(selfupdateCmd)
}
