package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-asgraph/pkg/config"
	"github.com/dd0wney/cluso-asgraph/pkg/corpus"
	"github.com/dd0wney/cluso-asgraph/pkg/logging"
	"github.com/dd0wney/cluso-asgraph/pkg/metrics"
	"github.com/dd0wney/cluso-asgraph/pkg/pipeline"
	"github.com/dd0wney/cluso-asgraph/pkg/report"
	"github.com/dd0wney/cluso-asgraph/pkg/stats"
)

type analyzeFlags struct {
	dataDir      string
	outputDir    string
	workers      int
	cacheBackend string
	cacheDir     string
	readOnly     bool
	metricsFile  string
	fillMissing  bool
	noSummary    bool
	collapse     bool
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	flags := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze [data-dir]",
		Short: "Build every year of a corpus and write the figure tables",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root, func(c *config.Config) {
				flags.apply(cmd, args, c)
			})
			if err != nil {
				return err
			}
			return runAnalyze(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.dataDir, "data-dir", "d", "", "Directory of per-year dumps")
	f.StringVarP(&flags.outputDir, "output-dir", "o", "", "Directory the figure tables are written to")
	f.IntVarP(&flags.workers, "workers", "w", 0, "Concurrent year tasks (0 = number of CPUs)")
	f.StringVar(&flags.cacheBackend, "cache", "", "Snapshot cache backend (file, badger, s3, none)")
	f.StringVar(&flags.cacheDir, "cache-dir", "", "Snapshot cache directory")
	f.BoolVar(&flags.readOnly, "cache-read-only", false, "Read snapshots but never write them")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	f.BoolVar(&flags.fillMissing, "fill-missing-years", false, "Emit zero rows for years without a dump")
	f.BoolVar(&flags.noSummary, "no-summary", false, "Do not print the summary table")
	f.BoolVar(&flags.collapse, "collapse-prepending", false, "Drop consecutive repeats of an ASN in paths")
	return cmd
}

func (fl *analyzeFlags) apply(cmd *cobra.Command, args []string, c *config.Config) {
	if len(args) == 1 {
		c.DataDir = args[0]
	}
	if changed(cmd, "data-dir") {
		c.DataDir = fl.dataDir
	}
	if changed(cmd, "output-dir") {
		c.OutputDir = fl.outputDir
	}
	if changed(cmd, "workers") {
		c.Workers = fl.workers
	}
	if changed(cmd, "cache") {
		c.Cache.Backend = fl.cacheBackend
	}
	if changed(cmd, "cache-dir") {
		c.Cache.Dir = fl.cacheDir
	}
	if changed(cmd, "cache-read-only") {
		c.Cache.ReadOnly = fl.readOnly
	}
	if changed(cmd, "metrics-file") {
		c.MetricsFile = fl.metricsFile
	}
	if changed(cmd, "fill-missing-years") {
		c.Report.FillMissingYears = fl.fillMissing
	}
	if changed(cmd, "no-summary") {
		c.Report.Summary = !fl.noSummary
	}
	if changed(cmd, "collapse-prepending") {
		c.Build.CollapsePrepending = fl.collapse
	}
}

func runAnalyze(cmd *cobra.Command, cfg *config.Config) error {
	logger, _ := newLogger(cfg, cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := cfg.OpenStore(ctx, logger)
	if err != nil {
		return fmt.Errorf("open snapshot cache: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("closing snapshot cache failed", logging.Error(err))
		}
	}()
	logger.Info("snapshot cache opened",
		logging.Backend(store.Name()),
		logging.Bool("read_only", cfg.Cache.ReadOnly))

	files, err := corpus.Discover(cfg.DataDir, logger)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	reg.CorpusFiles.Set(float64(len(files)))

	p := pipeline.New(pipeline.Options{
		Workers: cfg.EffectiveWorkers(),
		Build:   cfg.BuildOptions(),
		Store:   store,
		Logger:  logger,
		Metrics: reg,
	})
	results, err := p.Run(ctx, files)
	if err != nil {
		return err
	}

	failed := pipeline.Failed(results)
	for _, r := range failed {
		logger.Error("year failed", logging.Year(r.Year), logging.File(r.File.Path), logging.Error(r.Err))
	}

	if err := writeReports(cmd, cfg, logger, results); err != nil {
		return err
	}

	if cfg.MetricsFile != "" {
		if err := reg.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("metrics textfile not written", logging.File(cfg.MetricsFile), logging.Error(err))
		}
	}

	if err := context.Cause(ctx); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %d of %d", errTasksFailed, len(failed), len(results))
	}
	return nil
}

func writeReports(cmd *cobra.Command, cfg *config.Config, logger logging.Logger, results []pipeline.Result) error {
	years := stats.Aggregate(results)
	if cfg.Report.FillMissingYears {
		years = stats.FillMissingYears(years)
	}

	paths, err := report.WriteFigures(cfg.OutputDir, years)
	if err != nil {
		return fmt.Errorf("write figures: %w", err)
	}
	for _, path := range paths {
		logger.Info("figure written", logging.File(path), logging.Count(len(years)))
	}

	if cfg.Report.Summary {
		report.WriteSummary(cmd.OutOrStdout(), years)
	}
	return nil
}
