package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryDepth, cfg.Editor.HistoryDepth)
	assert.Equal(t, DefaultCoalesceWindow, cfg.Editor.CoalesceWindow)
	assert.Equal(t, DefaultPasteOffset, cfg.Editor.PasteOffset)
	assert.Equal(t, DefaultDebounce, cfg.Autosave.Debounce)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.NotEmpty(t, cfg.Store.Path)
	assert.Equal(t, "info", cfg.Logger.LogLevel)
}

func TestFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[logger]
log_level = "debug"
enabled_tags = ["autosave"]

[editor]
history_depth = 20
coalesce_window = "250ms"
paste_offset = 5
system_clipboard = true

[autosave]
debounce = "1s"

[store]
driver = "remote"
url = "http://localhost:8080"
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.LogLevel)
	assert.Equal(t, []string{"autosave"}, cfg.Logger.EnabledTags)
	assert.Equal(t, 20, cfg.Editor.HistoryDepth)
	assert.Equal(t, 250*time.Millisecond, cfg.Editor.CoalesceWindow)
	assert.Equal(t, 5.0, cfg.Editor.PasteOffset)
	assert.True(t, cfg.Editor.SystemClipboard)
	assert.Equal(t, time.Second, cfg.Autosave.Debounce)
	assert.Equal(t, DefaultSaveTimeout, cfg.Autosave.Timeout)
	assert.Equal(t, DriverRemote, cfg.Store.Driver)
	assert.Equal(t, "http://localhost:8080", cfg.Store.URL)
}

func TestZeroWindowAndOffsetAreKept(t *testing.T) {
	path := writeConfig(t, `
[editor]
coalesce_window = "0s"
paste_offset = 0
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Zero(t, cfg.Editor.CoalesceWindow)
	assert.Zero(t, cfg.Editor.PasteOffset)
}

func TestInvalidValuesAreReset(t *testing.T) {
	path := writeConfig(t, `
[editor]
history_depth = -3
move_step = 0

[autosave]
debounce = "-1s"

[store]
driver = "postgres"
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryDepth, cfg.Editor.HistoryDepth)
	assert.Equal(t, DefaultMoveStep, cfg.Editor.MoveStep)
	assert.Equal(t, DefaultDebounce, cfg.Autosave.Debounce)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
}

func TestRemoteWithoutURLFallsBackToMemory(t *testing.T) {
	path := writeConfig(t, "[store]\ndriver = \"remote\"\n")
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
}

func TestMalformedFileReportsError(t *testing.T) {
	path := writeConfig(t, "[editor\nhistory_depth = ")
	cfg, err := Load(path, nil)
	assert.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultHistoryDepth, cfg.Editor.HistoryDepth)
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "[editor]\nhistory_depth = 20\n[store]\ndriver = \"memory\"\n")

	flags := NewFlags(flag.NewFlagSet("test", flag.ContinueOnError))
	rest, err := flags.Parse([]string{
		"-history", "7",
		"-debounce", "750ms",
		"-store", "SQLite",
		"-db", "/tmp/x.db",
		"-log-tags", "autosave, history ,",
		"project-id",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"project-id"}, rest)

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Editor.HistoryDepth)
	assert.Equal(t, 750*time.Millisecond, cfg.Autosave.Debounce)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.Store.Path)
	assert.Equal(t, []string{"autosave", "history"}, cfg.Logger.EnabledTags)
}

func TestUnsetFlagsLeaveConfigAlone(t *testing.T) {
	flags := NewFlags(flag.NewFlagSet("test", flag.ContinueOnError))
	_, err := flags.Parse(nil)
	require.NoError(t, err)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"), flags)
	require.NoError(t, err)
	assert.False(t, cfg.Editor.SystemClipboard)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
}
