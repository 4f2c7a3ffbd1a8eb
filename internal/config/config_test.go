package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "confwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, DefaultExportPath, cfg.ExportPath)
	assert.Equal(t, DefaultInterval, cfg.Interval)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.False(t, cfg.Export)
	assert.Zero(t, cfg.BackfillDays)
}

// All nine sources must work out of the box, so the two parameterized ones
// carry real default targets.
func TestLoadDefaultSourceTargets(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultNaKonferenciiCategory, cfg.Sources.NaKonferenciiCategory)
	assert.Contains(t, cfg.Sources.NaKonferenciiCategory, "na-konferencii.ru/conference-cat/")
	assert.Equal(t, DefaultTelegramChannel, cfg.Sources.TelegramChannel)
	assert.NotEmpty(t, cfg.Sources.TelegramChannel)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
db_path: /tmp/other.db
interval: 24h
export: true
sources:
  telegram_channel: confs_channel
  na_konferencii_pages: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.Interval)
	assert.True(t, cfg.Export)
	assert.Equal(t, "confs_channel", cfg.Sources.TelegramChannel)
	assert.Equal(t, 10, cfg.Sources.NaKonferenciiPages)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("CONFWATCH_DB_PATH", "/tmp/env.db")
	t.Setenv("CONFWATCH_SOURCES_TELEGRAM_CHANNEL", "env_channel")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
	assert.Equal(t, "env_channel", cfg.Sources.TelegramChannel)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty db path", "db_path: \"\""},
		{"negative interval", "interval: -1h"},
		{"negative backfill", "backfill_days: -3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}
