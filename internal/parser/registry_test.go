package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovolkova/confwatch/internal/fetch"
)

func TestDefaultSetRegistersAllSources(t *testing.T) {
	parsers := DefaultSet(fetch.New(), Sources{
		NaKonferenciiCategory: "https://na-konferencii.ru/conference-cat/econ",
		TelegramChannel:       "smuecon218",
	})
	require.Len(t, parsers, 9)

	seen := make(map[string]bool, len(parsers))
	for _, p := range parsers {
		assert.NotEmpty(t, p.Name())
		assert.False(t, seen[p.Name()], "duplicate source name %q", p.Name())
		seen[p.Name()] = true
	}
	assert.True(t, seen["na_konferencii_category"])
	assert.True(t, seen["telegram_channel"])
}

func TestDefaultSetSkipsEmptyTargets(t *testing.T) {
	parsers := DefaultSet(fetch.New(), Sources{})
	require.Len(t, parsers, 7)

	for _, p := range parsers {
		assert.NotEqual(t, "na_konferencii_category", p.Name())
		assert.NotEqual(t, "telegram_channel", p.Name())
	}
}
