// Package selfupdate keeps the rbxmanager binary itself current.
//
// It fetches the manager's own release list, compares the newest published
// tag against the running build and, on confirmation, downloads the
// platform-specific asset and swaps the executable in place.
package selfupdate
