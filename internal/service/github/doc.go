// Package github talks to the release hosting over plain HTTP.
//
// The Client fetches the release listing (JSON array of tag/name/assets),
// downloads release assets and source archives to the user's downloads
// folder, and builds the download URLs for both. ExtractArchive unpacks a
// zipped source tree and reports its top-level folder name so callers can
// locate the expected src/RbxPI layout.
package github
