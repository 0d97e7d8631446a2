package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rbxpi/rbxmanager/internal/config"
	"github.com/rbxpi/rbxmanager/internal/domain/release"
	"github.com/rbxpi/rbxmanager/internal/logger"
)

var (
	errBadHTTPStatus = errors.New("unexpected http status")
	errEmptyURL      = errors.New("download URL is empty")
)

// downloadChunkSize bounds memory use while streaming downloads to disk.
const downloadChunkSize = 8192

// Client fetches release metadata and artifacts over HTTP.
type Client struct {
	cfg          *config.Config
	httpClient   *http.Client
	downloadsDir string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for all requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithDownloadsDir overrides the directory files are downloaded into.
func WithDownloadsDir(dir string) Option {
	return func(c *Client) {
		c.downloadsDir = dir
	}
}

// NewClient creates a release client for the repository described by cfg.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// apiRelease mirrors one element of the release-listing payload.
// Pointer fields distinguish absent values, which default to "undefined".
type apiRelease struct {
	TagName *string    `json:"tag_name"`
	Name    *string    `json:"name"`
	Assets  []apiAsset `json:"assets"`
}

type apiAsset struct {
	Name *string `json:"name"`
}

// FetchReleaseList requests the release-listing endpoint and converts the
// JSON array into a freshly indexed cache. Keys are sequential integers from
// zero, preserving API order; the order is not guaranteed sorted by version.
// Any transport failure or unexpected payload shape is returned as an error
// and no partial cache is produced.
func (c *Client) FetchReleaseList(ctx context.Context) (release.Cache, error) {
	logger.InfoKV(ctx, "Fetching release list from API", "url", c.cfg.ReleasesAPIURL)

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.cfg.ReleasesAPIURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build release list request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch release list: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", c.cfg.ReleasesAPIURL, resp.Status, errBadHTTPStatus)
	}

	var payload []apiRelease
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode release list: %w", err)
	}

	cache := make(release.Cache, len(payload))
	for index, entry := range payload {
		r := release.Release{
			Tag:    stringOrUndefined(entry.TagName),
			Name:   stringOrUndefined(entry.Name),
			Assets: make([]string, 0, len(entry.Assets)),
		}

		for _, asset := range entry.Assets {
			r.Assets = append(r.Assets, stringOrUndefined(asset.Name))
		}

		cache[strconv.Itoa(index)] = r
	}

	logger.Infof(ctx, "Fetched and parsed %d releases", len(cache))

	return cache, nil
}

// DownloadFile streams an HTTP GET to the downloads directory in fixed-size
// chunks and returns the final path. The filename defaults to the last URL
// segment. Failure here is recoverable: callers abort the current workflow,
// not the whole process.
func (c *Client) DownloadFile(ctx context.Context, fileURL, filename string) (string, error) {
	if fileURL == "" {
		return "", errEmptyURL
	}

	if filename == "" {
		segments := strings.Split(fileURL, "/")
		filename = segments[len(segments)-1]
	}

	targetDir, err := c.downloadsDirectory()
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(targetDir, filename)

	logger.InfoKV(ctx, "Starting download", "file", filename)
	logger.DebugKV(ctx, "Download details", "url", fileURL, "destination", fullPath)

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.DownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, fileURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", filename, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s, %s: %w", fileURL, resp.Status, errBadHTTPStatus)
	}

	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", fullPath, err)
	}

	defer func() {
		_ = out.Close()
	}()

	if _, err = io.CopyBuffer(out, resp.Body, make([]byte, downloadChunkSize)); err != nil {
		return "", fmt.Errorf("write %s: %w", fullPath, err)
	}

	logger.Infof(ctx, "Successfully downloaded %s", filename)

	return fullPath, nil
}

// AssetURL builds the download URL of a named release asset.
func (c *Client) AssetURL(tag, asset string) string {
	return fmt.Sprintf("%s/%s/%s/releases/download/%s/%s", c.cfg.ReleasesHost, c.cfg.Owner, c.cfg.Repo, tag, asset)
}

// SourceArchiveURL builds the URL of the zipped source tree for a tag.
func (c *Client) SourceArchiveURL(tag string) string {
	return fmt.Sprintf("%s/%s/%s/archive/refs/tags/%s.zip", c.cfg.ReleasesHost, c.cfg.Owner, c.cfg.Repo, tag)
}

// downloadsDirectory resolves the user's downloads folder, preferring the
// localized name when present.
func (c *Client) downloadsDirectory() (string, error) {
	if c.downloadsDir != "" {
		return c.downloadsDir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	localized := filepath.Join(home, "Téléchargements")
	if _, err = os.Stat(localized); err == nil {
		return localized, nil
	}

	return filepath.Join(home, "Downloads"), nil
}

func stringOrUndefined(s *string) string {
	if s == nil {
		return release.UndefinedField
	}

	return *s
}
