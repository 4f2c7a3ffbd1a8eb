package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ovolkova/confwatch/internal/config"
	"github.com/ovolkova/confwatch/internal/item"
	"github.com/ovolkova/confwatch/internal/storage"
)

func TestNewRootCmdFlags(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"config", "db", "export", "export-path", "backfill-days", "verbose"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag --%s", name)
	}
}

func TestApplyFlagsOverridesConfig(t *testing.T) {
	cmd := NewRootCmd()
	require.NoError(t, cmd.Flags().Set("db", "/tmp/flag.db"))
	require.NoError(t, cmd.Flags().Set("backfill-days", "14"))
	require.NoError(t, cmd.Flags().Set("export-path", "/tmp/out.csv"))

	cfg := &config.Config{DBPath: "/tmp/file.db", ExportPath: "other.xlsx"}
	applyFlags(cmd, cfg)

	assert.Equal(t, "/tmp/flag.db", cfg.DBPath)
	assert.Equal(t, 14, cfg.BackfillDays)
	assert.Equal(t, "/tmp/out.csv", cfg.ExportPath)
	assert.True(t, cfg.Export, "--export-path implies --export")
}

func TestLogStoredTotals(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Init(ctx))

	for _, it := range []item.Item{
		{Parser: "a", SourceURL: "https://example.org/a", Title: "one"},
		{Parser: "a", SourceURL: "https://example.org/a", Title: "two"},
		{Parser: "b", SourceURL: "https://example.org/b", Title: "three"},
	} {
		_, err := store.InsertIfNew(ctx, &it)
		require.NoError(t, err)
	}

	core, logs := observer.New(zapcore.InfoLevel)
	logStoredTotals(ctx, store, zap.New(core))

	entries := logs.FilterMessage("stored totals").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, int64(3), fields["total"])
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, fields["per_source"])
}

func TestApplyFlagsLeavesUnsetAlone(t *testing.T) {
	cmd := NewRootCmd()

	cfg := &config.Config{DBPath: "/tmp/file.db", Export: true, BackfillDays: 7}
	applyFlags(cmd, cfg)

	assert.Equal(t, "/tmp/file.db", cfg.DBPath)
	assert.True(t, cfg.Export)
	assert.Equal(t, 7, cfg.BackfillDays)
}
