package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// MaxBackups bounds how many timestamped copies are kept per config.
	MaxBackups = 3

	// BackupSuffix separates backup copies from the live config file.
	BackupSuffix = ".bak"
)

// BackupUserConfig copies the user config to a timestamped sibling file
// and prunes copies beyond MaxBackups. Returns the path of the new copy,
// or "" when there is no user config to preserve.
func BackupUserConfig() (string, error) {
	if !UserConfigExists() {
		return "", nil
	}
	configPath := GetUserConfigPath()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to read config for backup: %w", err)
	}

	stamp := time.Now().Format("20060102-150405")
	backupPath := fmt.Sprintf("%s%s.%s", configPath, BackupSuffix, stamp)
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	pruneOldBackups()
	return backupPath, nil
}

// ListUserConfigBackups returns the backup copies of the user config,
// newest first.
func ListUserConfigBackups() ([]string, error) {
	configPath := GetUserConfigPath()
	dir := filepath.Dir(configPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list config directory: %w", err)
	}

	prefix := filepath.Base(configPath) + BackupSuffix + "."
	var backups []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			backups = append(backups, filepath.Join(dir, entry.Name()))
		}
	}

	// The timestamp suffix sorts lexically, so name order is age order.
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))
	return backups, nil
}

// pruneOldBackups is best effort; a failed removal never fails the
// backup that triggered it.
func pruneOldBackups() {
	backups, err := ListUserConfigBackups()
	if err != nil || len(backups) <= MaxBackups {
		return
	}
	for _, stale := range backups[MaxBackups:] {
		_ = os.Remove(stale)
	}
}

// RestoreUserConfig replaces the user config with the given backup copy.
// The current config, if present, is backed up first so a restore is
// itself reversible.
func RestoreUserConfig(backupPath string) error {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	if UserConfigExists() {
		if _, err := BackupUserConfig(); err != nil {
			return fmt.Errorf("failed to preserve current config: %w", err)
		}
	}

	if err := os.MkdirAll(GetUserConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(GetUserConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write restored config: %w", err)
	}
	return nil
}
