// Package storage manages the on-disk configuration and data directories.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

const appName = "pixelview"

const (
	configFile    = "config.json"
	savesDir      = "saves"
	screenshotDir = "screenshots"
)

var (
	baseMu       sync.RWMutex
	baseOverride string
)

// SetBaseDir replaces the per-OS data directory. An empty dir restores the
// default.
func SetBaseDir(dir string) {
	baseMu.Lock()
	defer baseMu.Unlock()
	baseOverride = dir
}

// GetBaseDir returns the base directory for application data:
// - macOS: ~/Library/Application Support/pixelview
// - Linux: $XDG_DATA_HOME/pixelview or ~/.local/share/pixelview
// - Windows: %APPDATA%/pixelview
func GetBaseDir() (string, error) {
	baseMu.RLock()
	override := baseOverride
	baseMu.RUnlock()
	if override != "" {
		return override, nil
	}

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", appName), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		return filepath.Join(appData, appName), nil
	}

	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

func subPath(name string) (string, error) {
	base, err := GetBaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, name), nil
}

// GetConfigPath returns the full path to config.json
func GetConfigPath() (string, error) {
	return subPath(configFile)
}

// GetScreenshotDir returns the full path to the screenshots directory
func GetScreenshotDir() (string, error) {
	return subPath(screenshotDir)
}

// GetGameSaveDir returns the save state directory for a game (by CRC32)
func GetGameSaveDir(gameCRC string) (string, error) {
	dir, err := subPath(savesDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, gameCRC), nil
}

// AtomicWriteJSON writes data to a JSON file through a temporary file and a
// rename, so readers never see a partial file.
func AtomicWriteJSON(path string, data any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// AtomicWriteFile writes raw bytes the same way as AtomicWriteJSON.
func AtomicWriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// ReadJSON reads and unmarshals a JSON file
func ReadJSON(path string, data any) error {
	jsonData, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(jsonData, data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}
