package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ovolkova/confwatch/internal/parser"
)

// DefaultInterval is the cadence between perpetual passes.
const DefaultInterval = 72 * time.Hour

// PassFunc runs one orchestrator pass for the window.
type PassFunc func(ctx context.Context, w parser.Window) error

// Scheduler triggers passes either once (backfill) or on a fixed interval.
type Scheduler struct {
	run      PassFunc
	interval time.Duration
	log      *zap.Logger
}

// New creates a Scheduler. A non-positive interval falls back to the
// default cadence; a nil logger is replaced with a no-op one.
func New(run PassFunc, interval time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{run: run, interval: interval, log: log}
}

// RunBackfill executes a single pass covering the last days days.
func (s *Scheduler) RunBackfill(ctx context.Context, days int) error {
	s.log.Info("backfill pass", zap.Int("days", days))
	return s.run(ctx, parser.Window{Days: days})
}

// RunForever runs one pass immediately, then repeats on the configured
// interval until ctx is cancelled. Pass failures are logged and do not
// break the cadence. Always returns nil after a graceful stop.
func (s *Scheduler) RunForever(ctx context.Context) error {
	s.runOnce(ctx)

	c := cron.New(cron.WithChain(
		// A pass slower than the interval must not pile up behind itself.
		cron.SkipIfStillRunning(&cronLogger{log: s.log}),
	))
	c.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		s.runOnce(ctx)
	}))

	s.log.Info("scheduler started", zap.Duration("interval", s.interval))
	c.Start()

	<-ctx.Done()
	s.log.Info("scheduler stopping")

	// Wait for an in-flight pass before returning.
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.run(ctx, parser.Window{}); err != nil {
		// The next scheduled pass still fires at the original cadence.
		s.log.Error("pass failed", zap.Error(err))
	}
}

// cronLogger adapts zap to the cron logging interface.
type cronLogger struct {
	log *zap.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Sugar().Infow(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
