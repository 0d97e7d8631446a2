package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rbxpi/rbxmanager/internal/compat"
	"github.com/rbxpi/rbxmanager/internal/config"
	"github.com/rbxpi/rbxmanager/internal/logger"
	"github.com/rbxpi/rbxmanager/internal/service/install"
	"github.com/rbxpi/rbxmanager/internal/service/shell"
	"github.com/rbxpi/rbxmanager/internal/service/update"
	"github.com/rbxpi/rbxmanager/internal/version"
)

var (
	// configPath to the settings YAML file.
	configPath string
	// logLevel sets the minimum level for console and file logs.
	logLevel string
	// force skips the environment compatibility checks.
	force bool

	// rootCmd represents the base command: an interactive menu routing to
	// the install or update workflow.
	rootCmd = &cobra.Command{
		Use:   "rbxmanager",
		Short: "Install and update RbxPI in your Roblox projects.",
		Long: `RbxPI Install Manager makes it easy to install RbxPI in your Roblox projects.

Run without a subcommand for the interactive menu, or invoke the install,
update, or selfupdate subcommands directly. Release metadata is cached
locally and refreshed automatically when it grows stale.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := notifyContext(cmd)
			defer stop()

			return runMenu(ctx)
		},
	}
)

// Execute runs the rbxmanager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, shell.ErrInterrupted) {
			fmt.Println("\nClosing RbxPI Install Manager.")
		}

		os.Exit(1)
	}
}

// setup configures logging and validates the environment before any workflow.
func setup(cmd *cobra.Command, _ []string) error {
	level, ok := logger.ParseLogLevel(logLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", logLevel)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	l, err := logger.NewWithFile(level, cfg.LogFile)
	if err != nil {
		// Fall back to console-only logging when the log directory is unusable.
		l = logger.New(level)
	}

	logger.SetLogger(l)
	logger.SetLevel(level)

	if force {
		logger.Warn(cmd.Context(), "Skipping environment compatibility checks")
		return nil
	}

	return compat.CheckOS(cmd.Context())
}

// notifyContext wires interrupt signals into the command context.
func notifyContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
}

// runMenu prints the header and routes the chosen action.
func runMenu(ctx context.Context) error {
	fmt.Printf("RbxPI Install Manager %s (%s) on %s\n\n",
		version.Short(),
		time.Now().Format("Jan 2 2006, 15:04:05"),
		compat.OSName())

	terminal := shell.New(nil, nil)

	action, err := terminal.Ask(ctx,
		"What do you want to do?\nInstall RbxPI on a new project or update an existing version? [install/update]")
	if err != nil {
		return err
	}

	switch strings.ToLower(action) {
	case "install", "i":
		return install.Run(ctx, &install.Options{ConfigPath: configPath})
	case "update", "u":
		return update.Run(ctx, &update.Options{ConfigPath: configPath})
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "minimum log level")
	rootCmd.PersistentFlags().BoolVarP(&force, "force", "f", false, "skip environment compatibility checks")
}
