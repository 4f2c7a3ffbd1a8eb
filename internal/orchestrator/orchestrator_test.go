package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovolkova/confwatch/internal/item"
	"github.com/ovolkova/confwatch/internal/parser"
	"github.com/ovolkova/confwatch/internal/storage"
)

// fakeParser returns canned items or a canned error and records the window
// it was invoked with.
type fakeParser struct {
	name       string
	items      []item.Item
	err        error
	lastWindow parser.Window
}

func (f *fakeParser) Name() string { return f.name }

func (f *fakeParser) Fetch(_ context.Context, w parser.Window) ([]item.Item, error) {
	f.lastWindow = w
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func fakeItems(parserName string, titles ...string) []item.Item {
	out := make([]item.Item, 0, len(titles))
	for _, title := range titles {
		out = append(out, item.Item{
			Parser:    parserName,
			SourceURL: "https://example.org/" + parserName,
			Title:     title,
			URLs:      []string{},
			Emails:    []string{},
		})
	}
	return out
}

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Init(context.Background()))
	return s
}

func sourceByName(t *testing.T, s *Summary, name string) SourceStats {
	t.Helper()
	for _, src := range s.Sources {
		if src.Parser == name {
			return src
		}
	}
	t.Fatalf("source %q not in summary", name)
	return SourceStats{}
}

func TestRunPassStoresAndCounts(t *testing.T) {
	store := newTestStore(t)
	a := &fakeParser{name: "a", items: fakeItems("a", "one", "two")}
	b := &fakeParser{name: "b", items: fakeItems("b", "three")}

	o := New(store, []parser.Parser{a, b}, nil)
	summary, err := o.RunPass(context.Background(), parser.Window{})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalFetched())
	assert.Equal(t, 3, summary.TotalInserted())
	assert.Equal(t, 0, summary.TotalDuplicates())
	assert.Equal(t, 0, summary.FailedSources())
	assert.Len(t, summary.NewItems, 3)

	for _, it := range summary.NewItems {
		assert.False(t, it.FetchedAt.IsZero(), "orchestrator stamps fetched_at")
		assert.NotEmpty(t, it.ContentHash)
	}

	counts, err := store.CountByParser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, counts)
}

func TestRunPassCountsDuplicates(t *testing.T) {
	store := newTestStore(t)
	a := &fakeParser{name: "a", items: fakeItems("a", "one", "two")}
	o := New(store, []parser.Parser{a}, nil)

	_, err := o.RunPass(context.Background(), parser.Window{})
	require.NoError(t, err)

	// Second pass re-fetches identical content.
	summary, err := o.RunPass(context.Background(), parser.Window{})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.TotalInserted())
	assert.Equal(t, 2, summary.TotalDuplicates())
	assert.Empty(t, summary.NewItems)
}

func TestRunPassIsolatesSourceFailure(t *testing.T) {
	store := newTestStore(t)
	a := &fakeParser{name: "a", err: errors.New("connection refused")}
	b := &fakeParser{name: "b", items: fakeItems("b", "one")}
	c := &fakeParser{name: "c", items: fakeItems("c", "two")}

	o := New(store, []parser.Parser{a, b, c}, nil)
	summary, err := o.RunPass(context.Background(), parser.Window{})
	require.NoError(t, err, "a failing source does not fail the pass")

	assert.Equal(t, 1, summary.FailedSources())
	failed := sourceByName(t, summary, "a")
	assert.True(t, failed.Failed)
	assert.Error(t, failed.Err)

	assert.Equal(t, 2, summary.TotalInserted())
	counts, err := store.CountByParser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"b": 1, "c": 1}, counts)
}

// failingSink reports a storage failure on every insert.
type failingSink struct{}

func (failingSink) InsertIfNew(context.Context, *item.Item) (storage.Outcome, error) {
	return storage.Duplicate, errors.New("disk I/O error")
}

func TestRunPassAbortsOnStorageFailure(t *testing.T) {
	a := &fakeParser{name: "a", items: fakeItems("a", "one")}
	o := New(failingSink{}, []parser.Parser{a}, nil)

	summary, err := o.RunPass(context.Background(), parser.Window{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	require.NotNil(t, summary, "partial summary still returned")
}

func TestRunPassPropagatesWindow(t *testing.T) {
	store := newTestStore(t)
	a := &fakeParser{name: "a", items: fakeItems("a", "one")}
	o := New(store, []parser.Parser{a}, nil)

	_, err := o.RunPass(context.Background(), parser.Window{Days: 30})
	require.NoError(t, err)
	assert.Equal(t, 30, a.lastWindow.Days)
}

func TestRenderSummary(t *testing.T) {
	summary := &Summary{
		Sources: []SourceStats{
			{Parser: "a", Fetched: 5, Inserted: 2, Duplicates: 3},
			{Parser: "b", Failed: true, Err: errors.New("timeout")},
		},
	}

	var sb strings.Builder
	RenderSummary(&sb, summary)
	out := sb.String()

	assert.Contains(t, out, "a")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "total")
}
