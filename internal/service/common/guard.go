//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/rbxpi/rbxmanager/internal/logger"
)

// ErrAlreadyRunning indicates another rbxmanager instance holds the run marker.
var ErrAlreadyRunning = errors.New("rbxmanager is already running")

const (
	// markerFilename marks that a workflow is running right now to avoid
	// two instances racing on the cache file or an install directory.
	markerFilename = "rbxmanager-run-marker.bin"

	// markerLifetime is the period after which a stale run marker is ignored.
	markerLifetime = 30 * time.Second

	baseManagerExecutable = "rbxmanager"
)

// markerPath returns the location of the run marker file.
func markerPath() string {
	return filepath.Join(os.TempDir(), markerFilename)
}

// AcquireRunMarker claims the single-instance marker and returns a release
// function. It fails with ErrAlreadyRunning when a fresh marker belongs to a
// live instance; stale markers are recovered.
func AcquireRunMarker(ctx context.Context) (func(), error) {
	if isManagerRunningNow(ctx) {
		return nil, ErrAlreadyRunning
	}

	marker, err := os.Create(markerPath())
	if err != nil {
		return nil, err
	}

	if err = marker.Close(); err != nil {
		return nil, err
	}

	return func() {
		if _, err := os.Stat(markerPath()); err == nil {
			_ = os.Remove(markerPath())
		}
	}, nil
}

// isManagerRunningNow checks presence of the marker file and attempts
// recovery if it looks stale.
func isManagerRunningNow(ctx context.Context) bool {
	fileInfo, err := os.Stat(markerPath())
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The run marker is too old, attempting cleanup")

		if err = terminateProcessByName(managerExecutable()); err != nil {
			return true
		}

		if err = os.Remove(markerPath()); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	logger.Infof(ctx, "Unable to read run marker: %v", err)

	return false
}

// terminateProcessByName tries to kill processes with the provided executable name.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}

// managerExecutable returns the platform-specific executable name.
func managerExecutable() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return baseManagerExecutable + ".exe"
	}

	return baseManagerExecutable
}
