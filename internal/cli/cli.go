package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ovolkova/confwatch/internal/config"
	"github.com/ovolkova/confwatch/internal/export"
	"github.com/ovolkova/confwatch/internal/fetch"
	"github.com/ovolkova/confwatch/internal/logger"
	"github.com/ovolkova/confwatch/internal/orchestrator"
	"github.com/ovolkova/confwatch/internal/parser"
	"github.com/ovolkova/confwatch/internal/scheduler"
	"github.com/ovolkova/confwatch/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig       string
	flagDB           string
	flagExport       bool
	flagExportPath   string
	flagBackfillDays int
	flagVerbose      bool
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confwatch",
		Short: "Watch conference listing sources and collect new announcements",
		Long: `confwatch periodically fetches a fixed set of conference listing
sources, extracts structured announcements, and stores the ones it has
not seen before. Without flags it keeps running and repeats the pass on
a fixed cadence; --backfill-days runs one deeper pass and exits.`,
		SilenceUsage: true,
		RunE:         run,
	}

	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&flagDB, "db", "", "SQLite database path")
	cmd.Flags().BoolVar(&flagExport, "export", false, "Write newly collected items to a tabular file after each pass")
	cmd.Flags().StringVar(&flagExportPath, "export-path", "", "Export file path (.csv or .xlsx)")
	cmd.Flags().IntVar(&flagBackfillDays, "backfill-days", 0, "Run one pass covering the last N days, then exit")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlags(cmd, cfg)

	log, err := logger.New(cfg.Verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}

	client := fetch.New(fetch.WithTimeout(cfg.HTTPTimeout))
	parsers := parser.DefaultSet(client, parser.Sources{
		NaKonferenciiCategory: cfg.Sources.NaKonferenciiCategory,
		NaKonferenciiPages:    cfg.Sources.NaKonferenciiPages,
		TelegramChannel:       cfg.Sources.TelegramChannel,
		TelegramMessages:      cfg.Sources.TelegramMessages,
	})
	orch := orchestrator.New(store, parsers, log)

	pass := func(ctx context.Context, w parser.Window) error {
		summary, err := orch.RunPass(ctx, w)
		if summary != nil {
			orchestrator.RenderSummary(os.Stdout, summary)
			logStoredTotals(ctx, store, log)
			if cfg.Export && len(summary.NewItems) > 0 {
				if expErr := export.Write(cfg.ExportPath, summary.NewItems); expErr != nil {
					// An unwritable export file must not lose the pass.
					log.Error("export failed",
						zap.String("path", cfg.ExportPath),
						zap.Error(expErr))
				} else {
					log.Info("exported new items",
						zap.String("path", cfg.ExportPath),
						zap.Int("items", len(summary.NewItems)))
				}
			}
		}
		return err
	}

	sched := scheduler.New(pass, cfg.Interval, log)
	if cfg.BackfillDays > 0 {
		return sched.RunBackfill(ctx, cfg.BackfillDays)
	}
	return sched.RunForever(ctx)
}

// logStoredTotals reports the cumulative per-source row counts after a
// pass, so the log shows how the collection grows across runs.
func logStoredTotals(ctx context.Context, store *storage.Store, log *zap.Logger) {
	counts, err := store.CountByParser(ctx)
	if err != nil {
		log.Warn("reading stored totals", zap.Error(err))
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	log.Info("stored totals",
		zap.Any("per_source", counts),
		zap.Int("total", total))
}

// applyFlags lets explicitly set flags win over the config file.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("db") {
		cfg.DBPath = flagDB
	}
	if cmd.Flags().Changed("export") {
		cfg.Export = flagExport
	}
	if cmd.Flags().Changed("export-path") {
		cfg.ExportPath = flagExportPath
		cfg.Export = true
	}
	if cmd.Flags().Changed("backfill-days") {
		cfg.BackfillDays = flagBackfillDays
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = flagVerbose
	}
}

// Execute runs the root command and maps the result to an exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return ExitError
	}
	return ExitSuccess
}
