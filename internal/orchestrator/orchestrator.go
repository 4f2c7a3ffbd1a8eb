package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ovolkova/confwatch/internal/item"
	"github.com/ovolkova/confwatch/internal/parser"
	"github.com/ovolkova/confwatch/internal/storage"
)

// Sink is the subset of the storage engine a pass needs.
type Sink interface {
	InsertIfNew(ctx context.Context, it *item.Item) (storage.Outcome, error)
}

// SourceStats aggregates one source's results within a pass.
type SourceStats struct {
	Parser     string
	Fetched    int
	Inserted   int
	Duplicates int
	Failed     bool
	Err        error
	Duration   time.Duration
}

// Summary describes one completed pass.
type Summary struct {
	StartedAt time.Time
	Duration  time.Duration
	Sources   []SourceStats
	// NewItems are the rows actually written this pass, for export.
	NewItems []item.Item
}

// TotalFetched sums fetched items across sources.
func (s *Summary) TotalFetched() int {
	n := 0
	for _, src := range s.Sources {
		n += src.Fetched
	}
	return n
}

// TotalInserted sums newly written rows across sources.
func (s *Summary) TotalInserted() int {
	n := 0
	for _, src := range s.Sources {
		n += src.Inserted
	}
	return n
}

// TotalDuplicates sums skipped rows across sources.
func (s *Summary) TotalDuplicates() int {
	n := 0
	for _, src := range s.Sources {
		n += src.Duplicates
	}
	return n
}

// FailedSources counts sources that could not complete.
func (s *Summary) FailedSources() int {
	n := 0
	for _, src := range s.Sources {
		if src.Failed {
			n++
		}
	}
	return n
}

// Orchestrator drives the registered parsers against the store.
type Orchestrator struct {
	sink    Sink
	parsers []parser.Parser
	log     *zap.Logger
	now     func() time.Time
}

// New creates an Orchestrator. A nil logger is replaced with a no-op one.
func New(sink Sink, parsers []parser.Parser, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		sink:    sink,
		parsers: parsers,
		now:     time.Now,
		log:     log,
	}
}

type sourceResult struct {
	stats      SourceStats
	newItems   []item.Item
	storageErr error
}

// RunPass fetches every source for the window and persists the results.
// Source failures are recorded in the summary; only a storage failure
// returns an error, together with the partial summary.
func (o *Orchestrator) RunPass(ctx context.Context, w parser.Window) (*Summary, error) {
	started := o.now()
	o.log.Info("pass started",
		zap.Int("sources", len(o.parsers)),
		zap.Int("backfill_days", w.Days))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan sourceResult, len(o.parsers))
	var wg sync.WaitGroup
	for _, p := range o.parsers {
		wg.Add(1)
		go func(p parser.Parser) {
			defer wg.Done()
			res := o.runSource(ctx, p, w)
			if res.storageErr != nil {
				// Nothing more can be persisted; stop the other sources.
				cancel()
			}
			results <- res
		}(p)
	}
	wg.Wait()
	close(results)

	summary := &Summary{StartedAt: started}
	var storageErr error
	for res := range results {
		summary.Sources = append(summary.Sources, res.stats)
		summary.NewItems = append(summary.NewItems, res.newItems...)
		if res.storageErr != nil && storageErr == nil {
			storageErr = res.storageErr
		}
	}

	sort.Slice(summary.Sources, func(i, j int) bool {
		return summary.Sources[i].Parser < summary.Sources[j].Parser
	})
	sort.Slice(summary.NewItems, func(i, j int) bool {
		a, b := summary.NewItems[i], summary.NewItems[j]
		if !a.FetchedAt.Equal(b.FetchedAt) {
			return a.FetchedAt.Before(b.FetchedAt)
		}
		return a.Parser < b.Parser
	})
	summary.Duration = o.now().Sub(started)

	if storageErr != nil {
		o.log.Error("pass aborted on storage failure", zap.Error(storageErr))
		return summary, fmt.Errorf("storing items: %w", storageErr)
	}

	o.log.Info("pass finished",
		zap.Int("fetched", summary.TotalFetched()),
		zap.Int("inserted", summary.TotalInserted()),
		zap.Int("duplicates", summary.TotalDuplicates()),
		zap.Int("failed_sources", summary.FailedSources()),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

// runSource fetches one source and writes its items.
func (o *Orchestrator) runSource(ctx context.Context, p parser.Parser, w parser.Window) sourceResult {
	started := o.now()
	log := o.log.With(zap.String("parser", p.Name()))
	log.Info("source fetch started")

	res := sourceResult{stats: SourceStats{Parser: p.Name()}}

	items, err := p.Fetch(ctx, w)
	if err != nil {
		log.Warn("source unavailable", zap.Error(err))
		res.stats.Failed = true
		res.stats.Err = err
		res.stats.Duration = o.now().Sub(started)
		return res
	}
	res.stats.Fetched = len(items)

	for i := range items {
		it := &items[i]
		it.FetchedAt = o.now().UTC()
		it.ContentHash = item.Fingerprint(it)

		outcome, err := o.sink.InsertIfNew(ctx, it)
		if err != nil {
			res.storageErr = err
			break
		}
		switch outcome {
		case storage.Inserted:
			res.stats.Inserted++
			res.newItems = append(res.newItems, *it)
		case storage.Duplicate:
			res.stats.Duplicates++
		}
	}

	res.stats.Duration = o.now().Sub(started)
	log.Info("source finished",
		zap.Int("fetched", res.stats.Fetched),
		zap.Int("inserted", res.stats.Inserted),
		zap.Int("duplicates", res.stats.Duplicates))
	return res
}
