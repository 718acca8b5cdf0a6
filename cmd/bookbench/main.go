package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/certainbookstore/bookbench/internal/config"
	"github.com/certainbookstore/bookbench/internal/metrics"
	"github.com/certainbookstore/bookbench/internal/output"
	"github.com/certainbookstore/bookbench/internal/runner"
	"github.com/certainbookstore/bookbench/internal/threshold"
	"github.com/certainbookstore/bookbench/internal/tracing"
	"github.com/certainbookstore/bookbench/internal/workload"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

// errThresholdsFailed marks a completed run whose assertions did not hold.
var errThresholdsFailed = errors.New("thresholds failed")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	logger, err := newLogger(stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	for _, note := range cfg.Warnings() {
		logger.Warn().Msg(note)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		if err := provider.Shutdown(sctx); err != nil {
			logger.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	target, err := newStore(cfg, seed, provider.ShouldPropagate())
	if err != nil {
		return err
	}
	defer target.Close()

	seeded, err := workload.Seed(ctx, target, rand.New(rand.NewSource(seed)), cfg.SeedBooks)
	if err != nil {
		return err
	}
	logger.Info().
		Str("mode", target.mode).
		Int("seeded_books", len(seeded)).
		Int("workers", cfg.Workers).
		Int("warmup_runs", cfg.WarmUpRuns).
		Int("measured_runs", cfg.MeasuredRuns).
		Int64("seed", seed).
		Msg("starting run")

	collector := metrics.NewCollector()
	opts := runner.Options{
		Workers:       cfg.Workers,
		Configuration: toWorkloadConfiguration(cfg, target),
		RandomSeed:    seed,
		WorkerTimeout: cfg.WorkerTimeout,
		RatePerSecond: cfg.Rate,
		ArrivalModel:  toRunnerArrivalModel(cfg.Arrival.Model),
		Observer:      collector,
		Tracer:        provider.Tracer(),
	}
	if cfg.LogErrors {
		opts.FailureLogger = &zerologFailureLogger{logger: logger}
	}

	coordinator, err := runner.New(opts)
	if err != nil {
		return err
	}

	var progress *output.ProgressReporter
	if cfg.Output == config.OutputText {
		expected := int64(cfg.Workers) * int64(cfg.MeasuredRuns)
		progress = output.NewProgressReporter(collector, expected, progressInterval, stderr)
		progress.Start()
	}

	started := time.Now()
	result, err := coordinator.Run(ctx)
	if progress != nil {
		progress.Stop()
	}
	if err != nil {
		return fmt.Errorf("run aborted: %w", err)
	}

	summary := metrics.Aggregate(result.Workers)
	stats := collector.Stats(result.Duration)
	evaluated := threshold.NewEvaluator(thresholds).Evaluate(summary, stats)

	report := output.Report{
		RunID:      output.NewRunID(),
		StartedAt:  started,
		Mode:       target.mode,
		Seed:       result.Seed,
		WallClock:  result.Duration,
		Summary:    summary,
		Latency:    stats,
		Workers:    result.Workers,
		Thresholds: output.ThresholdOutcomes(evaluated),
	}
	if !cfg.Local {
		report.Server = cfg.ServerAddress
	}
	if err := output.Write(stdout, string(cfg.Output), report); err != nil {
		return err
	}

	if !threshold.Passed(evaluated) {
		failed := 0
		for _, r := range evaluated {
			if !r.Pass {
				failed++
			}
		}
		return fmt.Errorf("%w: %d of %d", errThresholdsFailed, failed, len(evaluated))
	}
	return nil
}

func toWorkloadConfiguration(cfg *config.Config, s *store) *workload.Configuration {
	return &workload.Configuration{
		RareThreshold:        cfg.RareThreshold,
		FrequentThreshold:    cfg.FrequentThreshold,
		WarmUpRuns:           cfg.WarmUpRuns,
		MeasuredRuns:         cfg.MeasuredRuns,
		BooksToAdd:           cfg.BooksToAdd,
		BooksWithLeastCopies: cfg.BooksWithLeastCopies,
		CopiesToAdd:          cfg.CopiesToAdd,
		EditorPicksToFetch:   cfg.EditorPicksToFetch,
		DistinctBooksToBuy:   cfg.DistinctBooksToBuy,
		CopiesPerBookToBuy:   cfg.CopiesPerBookToBuy,
		StockManager:         s,
		BookStore:            s,
	}
}

func toRunnerArrivalModel(model config.ArrivalModel) runner.ArrivalModel {
	switch strings.ToLower(string(model)) {
	case string(config.ArrivalModelPoisson):
		return runner.ArrivalModelPoisson
	default:
		return runner.ArrivalModelUniform
	}
}
