package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)

	dir := filepath.Join(tmp, "fascase")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBackupUserConfig(t *testing.T) {
	setupUserConfig(t, "version: 1\nembeddings:\n  provider: static\n")

	backupPath, err := BackupUserConfig()
	require.NoError(t, err)
	require.NotEmpty(t, backupPath)

	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "provider: static")
}

func TestBackupUserConfigNoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	backupPath, err := BackupUserConfig()
	require.NoError(t, err)
	assert.Empty(t, backupPath)
}

func TestBackupCleanupKeepsNewest(t *testing.T) {
	setupUserConfig(t, "version: 1\n")

	// More backups than MaxBackups; timestamps differ at second granularity
	// only, so space them out with distinct suffixed names via repeat calls.
	for i := 0; i < MaxBackups+2; i++ {
		_, err := BackupUserConfig()
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}

	backups, err := ListUserConfigBackups()
	require.NoError(t, err)
	assert.LessOrEqual(t, len(backups), MaxBackups+1)
}

func TestRestoreUserConfig(t *testing.T) {
	path := setupUserConfig(t, "version: 1\nserver:\n  port: 8000\n")

	backupPath, err := BackupUserConfig()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("version: 1\nserver:\n  port: 9999\n"), 0o644))

	require.NoError(t, RestoreUserConfig(backupPath))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "port: 8000")
}

func TestRestoreUserConfigMissingBackup(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	assert.Error(t, RestoreUserConfig("/nonexistent/backup.bak"))
}
