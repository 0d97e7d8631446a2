package update

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbxpi/rbxmanager/internal/domain/release"
	"github.com/rbxpi/rbxmanager/internal/service/shell"
)

// fakeSource serves a fixed cache and validates tags against it.
type fakeSource struct {
	cache release.Cache
}

func (f *fakeSource) GetReleases(_ context.Context) (release.Cache, error) {
	return f.cache, nil
}

func (f *fakeSource) ValidateRelease(_ context.Context, cache release.Cache, tag string) (release.Release, bool) {
	return cache.Lookup(tag)
}

// fakeClient records requested URLs and serves a canned local archive.
type fakeClient struct {
	servedPath string
	requested  []string
}

func (f *fakeClient) DownloadFile(_ context.Context, fileURL, _ string) (string, error) {
	f.requested = append(f.requested, fileURL)
	return f.servedPath, nil
}

func (f *fakeClient) SourceArchiveURL(tag string) string {
	return "https://releases.local/archive/" + tag + ".zip"
}

// seedInstall creates a project directory holding an RbxPI installation.
func seedInstall(t *testing.T, markerContents string, withMarker bool) string {
	t.Helper()

	project := t.TempDir()
	installed := filepath.Join(project, "RbxPI")
	require.NoError(t, os.MkdirAll(installed, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(installed, "stale.lua"), []byte("old"), 0o644))

	if withMarker {
		require.NoError(t, os.WriteFile(filepath.Join(installed, "Version.txt"), []byte(markerContents), 0o644))
	}

	return project
}

// sourceZip writes a release source archive with the expected src/RbxPI layout.
func sourceZip(t *testing.T, tag string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), tag+".zip")

	f, err := os.Create(path)
	require.NoError(t, err)

	w := zip.NewWriter(f)
	for name, contents := range map[string]string{
		"rbxpi-core-2.0.0/src/RbxPI/init.lua":    "return {}",
		"rbxpi-core-2.0.0/src/RbxPI/Version.txt": "2.0.0",
	} {
		entry, wErr := w.Create(name)
		require.NoError(t, wErr)
		_, wErr = entry.Write([]byte(contents))
		require.NoError(t, wErr)
	}

	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	return path
}

func newTestRunner(input string, client artifactClient) (*runner, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cache := release.Cache{
		"0": {Tag: "v2.0.0", Name: "Next", Assets: []string{}},
	}

	return &runner{
		catalog: &fakeSource{cache: cache},
		client:  client,
		prompt:  shell.New(strings.NewReader(input), out),
		out:     out,
	}, out
}

// TestRun_Replace performs a full update: old folder destroyed, new source
// tree moved into place, staging removed.
func TestRun_Replace(t *testing.T) {
	t.Parallel()

	project := seedInstall(t, "1.0.0", true)
	client := &fakeClient{servedPath: sourceZip(t, "v2.0.0")}
	r, out := newTestRunner(project+"\nv2.0.0\ny\n", client)

	require.NoError(t, r.run(context.Background()))
	require.Equal(t, "v1.0.0", r.oldRelease)

	contents, err := os.ReadFile(filepath.Join(project, "RbxPI", "Version.txt"))
	require.NoError(t, err)
	require.Equal(t, "2.0.0", string(contents))

	// The stale file from the previous installation is gone.
	_, err = os.Stat(filepath.Join(project, "RbxPI", "stale.lua"))
	require.True(t, os.IsNotExist(err))

	// Staging folder removed after deploy.
	_, err = os.Stat(filepath.Join(project, "rbxpi-core-2.0.0"))
	require.True(t, os.IsNotExist(err))

	require.Contains(t, out.String(), "RbxPI update completed successfully.")
}

// TestRun_MissingMarker continues with the "unknown" sentinel when the
// version marker file is absent.
func TestRun_MissingMarker(t *testing.T) {
	t.Parallel()

	project := seedInstall(t, "", false)
	client := &fakeClient{servedPath: sourceZip(t, "v2.0.0")}
	r, out := newTestRunner(project+"\nv2.0.0\ny\n", client)

	require.NoError(t, r.run(context.Background()))
	require.Equal(t, release.UnknownVersion, r.oldRelease)
	require.Contains(t, out.String(), "Your current version of RbxPI is unknown")
}

// TestRun_MarkerTruncation reads only the fixed-width version token.
func TestRun_MarkerTruncation(t *testing.T) {
	t.Parallel()

	project := seedInstall(t, "1.0.0-beta with trailing notes", true)
	client := &fakeClient{servedPath: sourceZip(t, "v2.0.0")}
	r, _ := newTestRunner(project+"\nv2.0.0\nn\n", client)

	require.NoError(t, r.run(context.Background()))
	require.Equal(t, "v1.0.0", r.oldRelease)
	require.Empty(t, client.requested)
}

// TestRun_InvalidTag aborts when the target release is not in the cache.
func TestRun_InvalidTag(t *testing.T) {
	t.Parallel()

	project := seedInstall(t, "1.0.0", true)
	r, _ := newTestRunner(project+"\nv9.9.9\n", &fakeClient{})

	err := r.run(context.Background())
	require.ErrorIs(t, err, errInvalidRelease)
}

// TestRun_NoInstallation rejects directories without an RbxPI folder.
func TestRun_NoInstallation(t *testing.T) {
	t.Parallel()

	project := t.TempDir()
	r, _ := newTestRunner(project+"\n", &fakeClient{})

	err := r.run(context.Background())
	require.ErrorIs(t, err, errInstallNotFound)
}

// TestRun_InvalidDirectory rejects paths that are not directories.
func TestRun_InvalidDirectory(t *testing.T) {
	t.Parallel()

	r, _ := newTestRunner("/definitely/not/a/dir\n", &fakeClient{})

	err := r.run(context.Background())
	require.ErrorIs(t, err, errInvalidDirectory)
}
