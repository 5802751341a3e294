package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fascase/fascase/internal/config"
)

// isolateConfig points the user config at a temp dir so tests never touch
// the real one.
func isolateConfig(t *testing.T) string {
	t.Helper()
	confHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", confHome)
	return confHome
}

func TestConfigPathCmd_PrintsUserPath(t *testing.T) {
	confHome := isolateConfig(t)

	cmd := newConfigPathCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), filepath.Join(confHome, "fascase", "config.yaml"))
}

func TestConfigInitCmd_CreatesTemplate(t *testing.T) {
	isolateConfig(t)

	cmd := newConfigInitCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	// Then: the template exists at the user config path
	path := config.GetUserConfigPath()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fascase user configuration")
	assert.Contains(t, string(data), "embeddings")
	assert.Contains(t, buf.String(), "Created user configuration")
}

func TestConfigInitCmd_RefusesOverwriteWithoutForce(t *testing.T) {
	isolateConfig(t)

	// Given: an existing user config
	first := newConfigInitCmd()
	first.SetOut(&bytes.Buffer{})
	require.NoError(t, first.Execute())

	require.NoError(t, os.WriteFile(config.GetUserConfigPath(), []byte("version: 1\n"), 0o644))

	// When: running init again without --force
	cmd := newConfigInitCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	require.NoError(t, cmd.Execute())

	// Then: the file is untouched
	data, err := os.ReadFile(config.GetUserConfigPath())
	require.NoError(t, err)
	assert.Equal(t, "version: 1\n", string(data))
	assert.Contains(t, buf.String(), "already exists")
}

func TestConfigInitCmd_ForceOverwrites(t *testing.T) {
	isolateConfig(t)

	first := newConfigInitCmd()
	first.SetOut(&bytes.Buffer{})
	require.NoError(t, first.Execute())
	require.NoError(t, os.WriteFile(config.GetUserConfigPath(), []byte("version: 1\n"), 0o644))

	cmd := newConfigInitCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--force"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(config.GetUserConfigPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "fascase user configuration")
}

func TestConfigShowCmd_Defaults(t *testing.T) {
	isolateConfig(t)

	cmd := newConfigShowCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--source", "defaults"})

	require.NoError(t, cmd.Execute())
	output := buf.String()
	assert.Contains(t, output, "defaults (hardcoded)")
	assert.Contains(t, output, "port: 8000")
	assert.Contains(t, output, "semantic_weight: 0.7")
}

func TestConfigShowCmd_Merged_AppliesDirConfig(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "fascase.yaml"),
		[]byte("server:\n  port: 9100\n"), 0o644))

	cmd := newConfigShowCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "port: 9100")
}

func TestConfigShowCmd_JSON(t *testing.T) {
	isolateConfig(t)

	cmd := newConfigShowCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--source", "defaults", "--json"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `"port": 8000`)
}

func TestConfigShowCmd_InvalidSource(t *testing.T) {
	cmd := newConfigShowCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--source", "nope"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid source")
}

func TestConfigInitCmd_ForceBacksUpExisting(t *testing.T) {
	isolateConfig(t)

	require.NoError(t, os.MkdirAll(config.GetUserConfigDir(), 0o755))
	require.NoError(t, os.WriteFile(config.GetUserConfigPath(), []byte("version: 1\nserver:\n  port: 9001\n"), 0o644))

	cmd := newConfigInitCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--force"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "Backed up existing config")

	backups, err := config.ListUserConfigBackups()
	require.NoError(t, err)
	require.Len(t, backups, 1)

	data, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "port: 9001")
}

func TestConfigRestoreCmd_RestoresNewestBackup(t *testing.T) {
	isolateConfig(t)

	require.NoError(t, os.MkdirAll(config.GetUserConfigDir(), 0o755))
	require.NoError(t, os.WriteFile(config.GetUserConfigPath(), []byte("version: 1\nserver:\n  port: 9001\n"), 0o644))

	force := newConfigInitCmd()
	force.SetOut(&bytes.Buffer{})
	force.SetArgs([]string{"--force"})
	require.NoError(t, force.Execute())

	cmd := newConfigRestoreCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(config.GetUserConfigPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "port: 9001")
	assert.Contains(t, buf.String(), "Restored user configuration")
}

func TestConfigRestoreCmd_ListsBackups(t *testing.T) {
	isolateConfig(t)

	require.NoError(t, os.MkdirAll(config.GetUserConfigDir(), 0o755))
	require.NoError(t, os.WriteFile(config.GetUserConfigPath(), []byte("version: 1\n"), 0o644))
	backupPath, err := config.BackupUserConfig()
	require.NoError(t, err)

	cmd := newConfigRestoreCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--list"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), backupPath)
}

func TestConfigRestoreCmd_NoBackups(t *testing.T) {
	isolateConfig(t)

	cmd := newConfigRestoreCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no config backups")
}
