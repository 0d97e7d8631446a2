// Package update replaces an existing Rojo-based RbxPI installation.
//
// The workflow locates the installation, detects the currently deployed
// version from its marker file (missing marker reads as "unknown"), lets
// the user pick a target release and swaps the RbxPI folder for the new
// source tree. The old folder is removed before the new one is in place;
// the absence of a backup at that point is a documented limitation.
package update
