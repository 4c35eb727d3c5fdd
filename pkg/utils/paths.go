package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appName = "aquarium"

// GetDefaultDataDir returns a system-appropriate directory for aquarium data files.
func GetDefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "data"
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(homeDir, "AppData", "Roaming", appName)
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", appName)
	default: // Primarily Linux, but also other UNIX-like systems.
		return filepath.Join(homeDir, ".local", "share", appName)
	}
}

// GetDefaultDBPathOnly returns a system-appropriate default path for the SQLite database
func GetDefaultDBPathOnly() string {
	return filepath.Join(GetDefaultDataDir(), appName+".db")
}

// expandPath resolves a leading ~/ and makes the path absolute.
func expandPath(p string) (string, error) {
	if strings.HasPrefix(p, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory to expand path '%s': %w", p, err)
		}
		p = filepath.Join(homeDir, p[2:])
	}

	absPath, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", p, err)
	}
	return absPath, nil
}

func ensureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to stat directory '%s': %w", dir, err)
	}
	return nil
}

// ResolveAndEnsureDBPath expands providedPath, or the default path when empty,
// and creates its parent directory.
func ResolveAndEnsureDBPath(providedPath string) (string, error) {
	targetPath := providedPath
	if targetPath == "" {
		targetPath = GetDefaultDBPathOnly()
	}

	targetPath, err := expandPath(targetPath)
	if err != nil {
		return "", err
	}
	if err := ensureDir(filepath.Dir(targetPath)); err != nil {
		return "", err
	}
	return targetPath, nil
}

// ResolveAndEnsureDataDir expands providedDir, or the default directory when empty,
// and creates it.
func ResolveAndEnsureDataDir(providedDir string) (string, error) {
	targetDir := providedDir
	if targetDir == "" {
		targetDir = GetDefaultDataDir()
	}

	targetDir, err := expandPath(targetDir)
	if err != nil {
		return "", err
	}
	if err := ensureDir(targetDir); err != nil {
		return "", err
	}
	return targetDir, nil
}
