package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

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
	errInvalidRelease    = errors.New("invalid release selected")
	errInvalidDirectory  = errors.New("path is not a directory")
	errInstallNotFound   = errors.New("RbxPI installation not found")
	errDestinationExists = errors.New("destination already exists")
)

const (
	// rbxpiFolderName is the deployed component folder inside a project.
	rbxpiFolderName = "RbxPI"

	// versionMarkerFilename is the marker file holding the installed version.
	versionMarkerFilename = "Version.txt"

	// versionMarkerLength is how many leading characters encode the version.
	versionMarkerLength = 5
)

// Options are inputs accepted by the update entry point.
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
	SourceArchiveURL(tag string) string
}

// runner holds the state of a single update: the located installation, the
// detected current version and the target release.
type runner struct {
	catalog    releaseSource
	client     artifactClient
	prompt     shell.Prompter
	out        io.Writer
	installDir string
	oldRelease string
	newRelease release.Release
}

// Run executes the update workflow and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "update")

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
		logger.ErrorKV(ctx, "Update failed", "error", err)
		return err
	}

	return nil
}

// run drives the workflow states in order: locate the installation, detect
// the current version, select the target release, confirm and replace.
func (r *runner) run(ctx context.Context) error {
	fmt.Fprintln(r.out, "\n* Please note that this action is only valid for installations via Rojo.")

	if err := r.selectInstallDir(ctx); err != nil {
		return err
	}

	r.detectCurrentVersion(ctx)

	if err := r.selectRelease(ctx); err != nil {
		return err
	}

	return r.replace(ctx)
}

// selectInstallDir prompts for the project directory and validates that it
// holds an existing RbxPI installation.
func (r *runner) selectInstallDir(ctx context.Context) error {
	fmt.Fprintln(r.out, "\nEnter the absolute directory of RbxPI (do not include the 'RbxPI' folder in it)")

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

	if _, err = os.Stat(filepath.Join(path, rbxpiFolderName)); err != nil {
		return fmt.Errorf("%s: %w", path, errInstallNotFound)
	}

	r.installDir = path
	logger.Debugf(ctx, "Installation directory validated: %s", path)

	return nil
}

// detectCurrentVersion reads the fixed-width version token from the marker
// file. A missing or unreadable marker yields the "unknown" sentinel and the
// workflow continues.
func (r *runner) detectCurrentVersion(ctx context.Context) {
	markerPath := filepath.Join(r.installDir, rbxpiFolderName, versionMarkerFilename)

	file, err := os.Open(markerPath)
	if err != nil {
		logger.Errorf(ctx, "%s missing in %s", versionMarkerFilename, filepath.Dir(markerPath))

		r.oldRelease = release.UnknownVersion

		return
	}

	defer func() {
		_ = file.Close()
	}()

	token := make([]byte, versionMarkerLength)

	n, err := io.ReadFull(file, token)
	if err != nil && n == 0 {
		r.oldRelease = release.UnknownVersion
		return
	}

	r.oldRelease = "v" + string(token[:n])
	logger.Debugf(ctx, "Current local version detected: %s", r.oldRelease)
}

// selectRelease prompts for the target version and validates it.
func (r *runner) selectRelease(ctx context.Context) error {
	fmt.Fprintln(r.out, "\n* If you install a version lower than the one you currently have,\nsome features or packages may not be supported.")

	releases, err := r.catalog.GetReleases(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "* Your current version of RbxPI is %s\n", r.oldRelease)
	fmt.Fprintln(r.out, "\nChoose a version of RbxPI")

	answer, err := r.prompt.Ask(ctx, "")
	if err != nil {
		return err
	}

	selected, ok := r.catalog.ValidateRelease(ctx, releases, answer)
	if !ok {
		return fmt.Errorf("%q: %w", answer, errInvalidRelease)
	}

	r.newRelease = selected
	logger.Debugf(ctx, "Target update version: %s", selected.Tag)

	return nil
}

// replace swaps the installed RbxPI folder for the target release. The
// existing installation is deleted before the new archive is verified in
// place: if extraction or the move fails afterwards, no backup remains.
// That ordering is a known, accepted risk of this workflow.
func (r *runner) replace(ctx context.Context) error {
	accepted, err := r.prompt.Confirm(ctx,
		fmt.Sprintf("\nDo you want to update RbxPI from %s to %s?", r.oldRelease, r.newRelease.Tag))
	if err != nil {
		return err
	}

	if !accepted {
		return nil
	}

	logger.Infof(ctx, "Updating RbxPI: %s -> %s", r.oldRelease, r.newRelease.Tag)

	archivePath, err := r.client.DownloadFile(ctx, r.client.SourceArchiveURL(r.newRelease.Tag), "")
	if err != nil {
		return fmt.Errorf("download update archive: %w", err)
	}

	destination := filepath.Join(r.installDir, rbxpiFolderName)

	logger.Debugf(ctx, "Removing old installation directory: %s", destination)

	if err = os.RemoveAll(destination); err != nil {
		return fmt.Errorf("remove old installation: %w", err)
	}

	logger.Info(ctx, "Extracting update archive")

	extractedFolder, err := github.ExtractArchive(archivePath, r.installDir)
	if err != nil {
		return fmt.Errorf("extract archive: %w", err)
	}

	source := filepath.Join(r.installDir, extractedFolder, "src", rbxpiFolderName)

	// The destination was removed above; never copy over one that reappeared.
	if _, err = os.Stat(destination); err == nil {
		return fmt.Errorf("%s: %w", destination, errDestinationExists)
	}

	logger.Infof(ctx, "Deploying new files to %s", destination)

	if err = common.CopyTree(source, destination); err != nil {
		return fmt.Errorf("deploy files: %w", err)
	}

	logger.Debugf(ctx, "Cleaning up staging folder %s", extractedFolder)

	if err = os.RemoveAll(filepath.Join(r.installDir, extractedFolder)); err != nil {
		logger.Warnf(ctx, "Unable to remove staging folder: %v", err)
	}

	fmt.Fprintln(r.out, "RbxPI update completed successfully.")

	return nil
}
