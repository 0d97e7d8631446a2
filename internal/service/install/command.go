package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rbxpi/rbxmanager/internal/config"
	"github.com/rbxpi/rbxmanager/internal/domain/release"
	"github.com/rbxpi/rbxmanager/internal/logger"
	"github.com/rbxpi/rbxmanager/internal/repository/releasecache"
	"github.com/rbxpi/rbxmanager/internal/service/catalog"
	"github.com/rbxpi/rbxmanager/internal/service/common"
	"github.com/rbxpi/rbxmanager/internal/service/github"
	"github.com/rbxpi/rbxmanager/internal/service/shell"
)

var (
	errInvalidRelease         = errors.New("invalid release selected")
	errUnsupportedEnvironment = errors.New("unsupported environment")
	errAssetNotFound          = errors.New("no .rbxm asset found for release")
	errInvalidDirectory       = errors.New("path is not a directory")
	errDestinationExists      = errors.New("destination already exists")
)

// Environment alias sets recognized at the selection prompt. Matching is
// case-insensitive.
var (
	rojoAliases   = map[string]struct{}{"rojo": {}, "r": {}}
	studioAliases = map[string]struct{}{"roblox studio": {}, "robloxstudio": {}, "rs": {}}
)

// rbxpiFolderName is the deployed component folder inside a project.
const rbxpiFolderName = "RbxPI"

// Options are inputs accepted by the install entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
}

// releaseSource is the catalog surface the workflow needs.
type releaseSource interface {
	GetReleases(ctx context.Context) (release.Cache, error)
	ValidateRelease(ctx context.Context, cache release.Cache, tag string) (release.Release, bool)
}

// artifactClient downloads release artifacts and builds their URLs.
type artifactClient interface {
	DownloadFile(ctx context.Context, fileURL, filename string) (string, error)
	AssetURL(tag, asset string) string
	SourceArchiveURL(tag string) string
}

// runner holds the state of a single installation. The workflow advances
// through release selection, environment selection and deployment; there are
// no backward transitions, and invalid input at a gating step aborts the run.
type runner struct {
	catalog     releaseSource
	client      artifactClient
	prompt      shell.Prompter
	out         io.Writer
	release     release.Release
	environment string
	installDir  string
}

// Run executes the install workflow and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "install")

	releaseMarker, err := common.AcquireRunMarker(ctx)
	if err != nil {
		return err
	}
	defer releaseMarker()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	client := github.NewClient(cfg)
	store := releasecache.NewFileStore(cfg.CacheFile)
	terminal := shell.New(nil, nil)

	r := &runner{
		catalog: catalog.New(store, client, terminal.Out()),
		client:  client,
		prompt:  terminal,
		out:     terminal.Out(),
	}

	if err = r.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Installation failed", "error", err)
		return err
	}

	return nil
}

// run drives the workflow states in order.
func (r *runner) run(ctx context.Context) error {
	logger.Info(ctx, "Starting installation workflow")

	if err := r.selectRelease(ctx); err != nil {
		return err
	}

	if err := r.selectEnvironment(ctx); err != nil {
		return err
	}

	return r.install(ctx)
}

// selectRelease prompts for a tag and validates it against the catalog.
// An invalid tag is fatal: one chance per prompt.
func (r *runner) selectRelease(ctx context.Context) error {
	releases, err := r.catalog.GetReleases(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(r.out, "Choose a version of RbxPI")

	answer, err := r.prompt.Ask(ctx, "")
	if err != nil {
		return err
	}

	selected, ok := r.catalog.ValidateRelease(ctx, releases, answer)
	if !ok {
		return fmt.Errorf("%q: %w", answer, errInvalidRelease)
	}

	r.release = selected
	logger.Debugf(ctx, "User selected release %s", selected.Tag)

	return nil
}

// selectEnvironment records a recognized environment alias. Unrecognized
// input leaves the environment unset; the install step then reports the
// unsupported-environment failure. Selection and validation are deliberately
// decoupled.
func (r *runner) selectEnvironment(ctx context.Context) error {
	fmt.Fprintln(r.out, "\nChoose your environment")

	answer, err := r.prompt.Ask(ctx, "[Rojo / Roblox Studio]")
	if err != nil {
		return err
	}

	choice := strings.ToLower(answer)

	_, isRojo := rojoAliases[choice]
	_, isStudio := studioAliases[choice]

	if isRojo || isStudio {
		r.environment = choice
		logger.Debugf(ctx, "Environment set to %q", choice)
	} else {
		logger.Errorf(ctx, "Invalid environment choice: %q", answer)
	}

	return nil
}

// install routes to the environment-specific deployment.
func (r *runner) install(ctx context.Context) error {
	if _, ok := studioAliases[r.environment]; ok {
		return r.installRobloxStudio(ctx)
	}

	if _, ok := rojoAliases[r.environment]; ok {
		return r.installRojo(ctx)
	}

	return fmt.Errorf("%q: %w", r.environment, errUnsupportedEnvironment)
}

// installRobloxStudio downloads the release's .rbxm asset to the downloads
// folder and reports its final location.
func (r *runner) installRobloxStudio(ctx context.Context) error {
	asset, ok := r.release.FirstAssetWithSuffix(".rbxm")
	if !ok {
		return fmt.Errorf("release %s: %w", r.release.Tag, errAssetNotFound)
	}

	logger.Infof(ctx, "Downloading .rbxm asset for %s", r.release.Tag)

	fullPath, err := r.client.DownloadFile(ctx, r.client.AssetURL(r.release.Tag, asset), "")
	if err != nil {
		return fmt.Errorf("download asset: %w", err)
	}

	fmt.Fprintf(r.out, "Installation complete, the .rbxm file is located in: %s\n", fullPath)

	return nil
}

// installRojo deploys the release's source tree into a project directory:
// download the tag archive, extract it beside the project, move src/RbxPI
// into place and drop the staging folder. An existing RbxPI folder aborts
// before anything is moved.
func (r *runner) installRojo(ctx context.Context) error {
	if err := r.askInstallDirectory(ctx); err != nil {
		return err
	}

	accepted, err := r.prompt.Confirm(ctx, fmt.Sprintf("\nDo you want to install RbxPI %s?", r.release.Tag))
	if err != nil {
		return err
	}

	if !accepted {
		return nil
	}

	archivePath, err := r.client.DownloadFile(ctx, r.client.SourceArchiveURL(r.release.Tag), "")
	if err != nil {
		return fmt.Errorf("download source archive: %w", err)
	}

	logger.Info(ctx, "Extracting and deploying files")

	extractedFolder, err := github.ExtractArchive(archivePath, r.installDir)
	if err != nil {
		return fmt.Errorf("extract archive: %w", err)
	}

	source := filepath.Join(r.installDir, extractedFolder, "src", rbxpiFolderName)
	destination := filepath.Join(r.installDir, rbxpiFolderName)

	if _, err = os.Stat(destination); err == nil {
		return fmt.Errorf("%s: %w", destination, errDestinationExists)
	}

	logger.Debugf(ctx, "Copying tree from %s to %s", source, destination)

	if err = common.CopyTree(source, destination); err != nil {
		// Staging folder is intentionally left behind here so a failed copy
		// can be inspected.
		return fmt.Errorf("deploy files: %w", err)
	}

	logger.Debugf(ctx, "Cleaning up staging folder %s", extractedFolder)

	if err = os.RemoveAll(filepath.Join(r.installDir, extractedFolder)); err != nil {
		logger.Warnf(ctx, "Unable to remove staging folder: %v", err)
	}

	fmt.Fprintf(r.out, "Rojo installation completed at %s\n", destination)

	return nil
}

// askInstallDirectory requests an absolute project path and validates it.
func (r *runner) askInstallDirectory(ctx context.Context) error {
	fmt.Fprintln(r.out, "\nEnter the absolute path to the directory where you want\nto install RbxPI in your project.")

	answer, err := r.prompt.Ask(ctx, "")
	if err != nil {
		return err
	}

	path, err := filepath.Abs(answer)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s: %w", path, errInvalidDirectory)
	}

	r.installDir = path
	logger.Debugf(ctx, "Install directory validated: %s", path)

	return nil
}
