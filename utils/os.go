package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/n0rdy/queuewatch/common"
)

const (
	appDir    = "queuewatch"
	appDbFile = "queuewatch.db"
)

// GetOrCreateDefaultDBPath returns the SQLite file to use when none is configured.
// An existing file in any known data directory wins over creating a new one in the preferred directory.
func GetOrCreateDefaultDBPath() (string, error) {
	candidates := candidateDBPaths()
	if len(candidates) == 0 {
		return "", fmt.Errorf("no data directory found for %s", runtime.GOOS)
	}

	// the OS settings (e.g., env vars) might have changed since the file was created
	var existingPaths []string
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			existingPaths = append(existingPaths, path)
		}
	}

	if len(existingPaths) > 1 {
		return "", fmt.Errorf("multiple database files found at: %v. Please remove duplicates manually", existingPaths)
	}
	if len(existingPaths) == 1 {
		return existingPaths[0], nil
	}

	preferredPath := candidates[0]
	dir := filepath.Dir(preferredPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return preferredPath, nil
}

// candidateDBPaths lists the possible database files, preferred location first.
func candidateDBPaths() []string {
	var dataDirs []string
	homeDir, _ := os.UserHomeDir()

	switch runtime.GOOS {
	case common.WindowsOS:
		dataDirs = append(dataDirs, os.Getenv("APPDATA"), os.Getenv("LOCALAPPDATA"), homeDir)
	case common.MacOS:
		if homeDir != "" {
			dataDirs = append(dataDirs, filepath.Join(homeDir, "Library", "Application Support"))
		}
		dataDirs = append(dataDirs, homeDir)
	default:
		dataDirs = append(dataDirs, os.Getenv("XDG_DATA_HOME"))
		if homeDir != "" {
			dataDirs = append(dataDirs, filepath.Join(homeDir, ".local", "share"))
		}
		dataDirs = append(dataDirs, homeDir)
	}

	paths := make([]string, 0, len(dataDirs))
	for _, dataDir := range dataDirs {
		if dataDir != "" {
			paths = append(paths, toDbFilePath(dataDir))
		}
	}
	return paths
}

func toDbFilePath(dataDir string) string {
	return filepath.Join(dataDir, appDir, appDbFile)
}
