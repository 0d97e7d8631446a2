package selfupdate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/rbxpi/rbxmanager/internal/config"
	"github.com/rbxpi/rbxmanager/internal/domain/release"
	"github.com/rbxpi/rbxmanager/internal/logger"
	"github.com/rbxpi/rbxmanager/internal/service/github"
	"github.com/rbxpi/rbxmanager/internal/service/shell"
	"github.com/rbxpi/rbxmanager/internal/version"
)

var (
	errNoReleases      = errors.New("no published releases found")
	errNoPlatformAsset = errors.New("no asset published for this platform")
)

// managerRepo is the repository rbxmanager itself is released from.
const managerRepo = "rbxmanager"

// Options are inputs accepted by the selfupdate entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// CheckOnly reports whether a newer version exists without applying it.
	CheckOnly bool
}

// fetcher retrieves the manager's own release list.
type fetcher interface {
	FetchReleaseList(ctx context.Context) (release.Cache, error)
	DownloadFile(ctx context.Context, fileURL, filename string) (string, error)
	AssetURL(tag, asset string) string
}

// runner holds the collaborators of a single self-update check.
type runner struct {
	client fetcher
	prompt shell.Prompter
	out    io.Writer
	// apply swaps the running executable; overridable in tests.
	apply func(update io.Reader, opts goupdate.Options) error
}

// Run checks the manager's own releases and optionally replaces the running
// binary with the newest published one.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "selfupdate")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	terminal := shell.New(nil, nil)

	r := &runner{
		client: github.NewClient(managerConfig(cfg)),
		prompt: terminal,
		out:    terminal.Out(),
		apply:  goupdate.Apply,
	}

	return r.run(ctx, opts.CheckOnly)
}

// managerConfig redirects the release client at the manager's own repository,
// keeping the host and timeouts from the user's settings.
func managerConfig(cfg *config.Config) *config.Config {
	manager := &config.Config{
		Owner:           cfg.Owner,
		Repo:            managerRepo,
		ReleasesHost:    cfg.ReleasesHost,
		FetchTimeout:    cfg.FetchTimeout,
		DownloadTimeout: cfg.DownloadTimeout,
	}
	manager.ReleasesAPIURL = fmt.Sprintf("https://api.github.com/repos/%s/%s/releases", manager.Owner, manager.Repo)

	return manager
}

// run compares the newest published tag against the running build and
// applies the platform asset on confirmation.
func (r *runner) run(ctx context.Context, checkOnly bool) error {
	cache, err := r.client.FetchReleaseList(ctx)
	if err != nil {
		return fmt.Errorf("fetch manager releases: %w", err)
	}

	if cache.Empty() {
		return errNoReleases
	}

	// The listing endpoint returns releases newest first.
	latest := cache[cache.Indexes()[0]]

	if latest.Tag == version.Tag() {
		fmt.Fprintf(r.out, "rbxmanager %s is up to date.\n", version.Short())
		return nil
	}

	fmt.Fprintf(r.out, "A new version of rbxmanager is available: %s (current: %s)\n", latest.Tag, version.Tag())

	if checkOnly {
		return nil
	}

	accepted, err := r.prompt.Confirm(ctx, "Do you want to update rbxmanager now?")
	if err != nil {
		return err
	}

	if !accepted {
		return nil
	}

	return r.applyLatest(ctx, latest)
}

// applyLatest downloads the platform asset of the given release and swaps
// the running executable in place.
func (r *runner) applyLatest(ctx context.Context, latest release.Release) error {
	asset, ok := latest.FirstAssetWithSuffix("_" + runtime.GOOS)
	if !ok {
		return fmt.Errorf("%s: %w", runtime.GOOS, errNoPlatformAsset)
	}

	downloadedPath, err := r.client.DownloadFile(ctx, r.client.AssetURL(latest.Tag, asset), "")
	if err != nil {
		return fmt.Errorf("download manager binary: %w", err)
	}

	binary, err := os.Open(filepath.Clean(downloadedPath))
	if err != nil {
		return fmt.Errorf("open downloaded binary: %w", err)
	}

	defer func() {
		_ = binary.Close()
	}()

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate running executable: %w", err)
	}

	logger.InfoKV(ctx, "Applying manager update", "target", executable, "version", latest.Tag)

	//nolint:exhaustruct // Checksum verification is out of scope for the manager.
	if err = r.apply(binary, goupdate.Options{
		TargetPath: executable,
		TargetMode: 0o755,
	}); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	fmt.Fprintf(r.out, "rbxmanager updated to %s, please restart it.\n", latest.Tag)

	return nil
}
