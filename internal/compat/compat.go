package compat

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/rbxpi/rbxmanager/internal/logger"
)

var errUnsupportedOS = errors.New("unsupported operating system")

// supportedSystems maps GOOS values to their display names.
var supportedSystems = map[string]string{
	"linux":   "Linux",
	"darwin":  "macOS",
	"windows": "Windows",
}

// OSName returns the display name of the current operating system,
// falling back to the raw GOOS value for unknown platforms.
func OSName() string {
	if name, ok := supportedSystems[runtime.GOOS]; ok {
		return name
	}

	return runtime.GOOS
}

// CheckOS verifies the current platform is one the manager supports.
func CheckOS(ctx context.Context) error {
	if _, ok := supportedSystems[runtime.GOOS]; !ok {
		return fmt.Errorf("%s: %w", runtime.GOOS, errUnsupportedOS)
	}

	logger.Debugf(ctx, "Operating system: %s (%s/%s)", OSName(), runtime.GOOS, runtime.GOARCH)

	return nil
}
