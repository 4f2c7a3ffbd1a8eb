package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovolkova/confwatch/internal/item"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Init(context.Background()))
	return s
}

func testItem(parser, title string) *item.Item {
	return &item.Item{
		Parser:    parser,
		SourceURL: "https://example.org/list",
		Title:     title,
		DateRaw:   "14 октября 2026",
		Details:   "details for " + title,
		URLs:      []string{"https://example.org/" + title},
		Emails:    []string{},
		FetchedAt: time.Now().UTC(),
	}
}

func TestInitIdempotent(t *testing.T) {
	s := newTestStore(t)
	// Init on every startup must be safe.
	require.NoError(t, s.Init(context.Background()))
	require.NoError(t, s.Init(context.Background()))
}

func TestInsertIfNew(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	out, err := s.InsertIfNew(ctx, testItem("parser_a", "conf-1"))
	require.NoError(t, err)
	assert.Equal(t, Inserted, out)

	// Same logical content: skipped, not an error.
	out, err = s.InsertIfNew(ctx, testItem("parser_a", "conf-1"))
	require.NoError(t, err)
	assert.Equal(t, Duplicate, out)

	items, err := s.Export(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "conf-1", items[0].Title)
	assert.NotEmpty(t, items[0].ContentHash)
}

func TestInsertComputesHashWhenAbsent(t *testing.T) {
	s := newTestStore(t)

	it := testItem("parser_a", "conf-1")
	require.Empty(t, it.ContentHash)

	_, err := s.InsertIfNew(context.Background(), it)
	require.NoError(t, err)
	assert.Equal(t, item.Fingerprint(it), it.ContentHash)
}

func TestConcurrentInsertSameHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const writers = 8
	outcomes := make([]Outcome, writers)
	errs := make([]error, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = s.InsertIfNew(ctx, testItem("parser_a", "race"))
		}(i)
	}
	wg.Wait()

	inserted := 0
	for i := 0; i < writers; i++ {
		require.NoError(t, errs[i])
		if outcomes[i] == Inserted {
			inserted++
		}
	}
	assert.Equal(t, 1, inserted, "exactly one racing writer wins")

	items, err := s.Export(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestExportFilterByParser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, spec := range []struct {
		parser string
		title  string
	}{
		{"parser_a", "a-1"},
		{"parser_b", "b-1"},
		{"parser_a", "a-2"},
	} {
		it := testItem(spec.parser, spec.title)
		it.FetchedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := s.InsertIfNew(ctx, it)
		require.NoError(t, err)
	}

	items, err := s.Export(ctx, Filter{Parser: "parser_a"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a-1", items[0].Title)
	assert.Equal(t, "a-2", items[1].Title)
	for _, it := range items {
		assert.Equal(t, "parser_a", it.Parser)
	}
}

func TestExportFilterByTimeRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		it := testItem("parser_a", string(rune('a'+i)))
		it.FetchedAt = base.AddDate(0, 0, i)
		_, err := s.InsertIfNew(ctx, it)
		require.NoError(t, err)
	}

	items, err := s.Export(ctx, Filter{
		Since: base.AddDate(0, 0, 1),
		Until: base.AddDate(0, 0, 3),
	})
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestExportOrderedByFetchedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	// Insert out of chronological order.
	for _, offset := range []int{3, 1, 2, 0} {
		it := testItem("parser_a", string(rune('a'+offset)))
		it.FetchedAt = base.Add(time.Duration(offset) * time.Hour)
		_, err := s.InsertIfNew(ctx, it)
		require.NoError(t, err)
	}

	items, err := s.Export(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, items, 4)
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].FetchedAt.Before(items[i-1].FetchedAt))
	}
}

func TestExportRoundTripsLists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	it := testItem("parser_a", "conf-1")
	it.URLs = []string{"https://example.org/b", "https://example.org/a"}
	it.Emails = []string{"org@example.org"}
	_, err := s.InsertIfNew(ctx, it)
	require.NoError(t, err)

	items, err := s.Export(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	// Extraction order is preserved on the way back out.
	assert.Equal(t, []string{"https://example.org/b", "https://example.org/a"}, items[0].URLs)
	assert.Equal(t, []string{"org@example.org"}, items[0].Emails)
}

func TestCountByParser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, spec := range []struct {
		parser string
		title  string
	}{
		{"parser_a", "a-1"},
		{"parser_a", "a-2"},
		{"parser_b", "b-1"},
	} {
		_, err := s.InsertIfNew(ctx, testItem(spec.parser, spec.title))
		require.NoError(t, err)
	}

	counts, err := s.CountByParser(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"parser_a": 2, "parser_b": 1}, counts)
}
