package workload

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/certainbookstore/bookbench/internal/generator"
	"github.com/certainbookstore/bookbench/internal/tracing"
)

// Pacer delays iterations to hold a target arrival rate.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FailureLogger receives recoverable interaction failures of the measured phase.
type FailureLogger interface {
	LogFailure(worker int, interaction Interaction, err error)
}

// Observer receives the outcome and latency of every measured iteration.
type Observer interface {
	RecordInteraction(interaction Interaction, latency time.Duration, err error)
}

// Worker executes the warm-up and measured phases of one workload stream.
// A Worker is not safe for concurrent use; each goroutine owns its own.
type Worker struct {
	id  int
	cfg *Configuration
	gen *generator.BookSetGenerator
	rnd *rand.Rand

	pacer    Pacer
	observer Observer
	logger   FailureLogger
	tracer   trace.Tracer

	// dispatch is swapped in tests to script interaction outcomes.
	dispatch func(ctx context.Context, kind Interaction) error
}

// Option customizes a Worker.
type Option func(*Worker)

// WithPacer paces every iteration of both phases.
func WithPacer(p Pacer) Option {
	return func(w *Worker) { w.pacer = p }
}

// WithObserver reports every measured iteration to o.
func WithObserver(o Observer) Option {
	return func(w *Worker) { w.observer = o }
}

// WithFailureLogger logs recoverable measured failures to l.
func WithFailureLogger(l FailureLogger) Option {
	return func(w *Worker) { w.logger = l }
}

// WithTracer wraps every measured interaction in a span.
func WithTracer(t trace.Tracer) Option {
	return func(w *Worker) { w.tracer = t }
}

// NewWorker returns a worker that routes with rnd and samples with gen. Neither may be
// shared with another worker.
func NewWorker(id int, cfg *Configuration, gen *generator.BookSetGenerator, rnd *rand.Rand, opts ...Option) *Worker {
	w := &Worker{id: id, cfg: cfg, gen: gen, rnd: rnd}
	w.dispatch = w.interact
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ID returns the worker's index within its run.
func (w *Worker) ID() int {
	return w.id
}

type counters struct {
	successful         int64
	customerTotal      int64
	customerSuccessful int64
	transaction        time.Duration
}

// Run executes WarmUpRuns discarded iterations followed by MeasuredRuns measured ones.
// It returns an error only for cancellation or a catastrophic failure, in which case the
// Result is zero.
func (w *Worker) Run(ctx context.Context) (res Result, err error) {
	current := InteractionRare
	defer func() {
		if p := recover(); p != nil {
			res = Result{}
			err = &CatastrophicError{Worker: w.id, Interaction: current, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	for i := 0; i < w.cfg.WarmUpRuns; i++ {
		if err := w.pace(ctx); err != nil {
			return Result{}, err
		}
		current = w.route()
		if err := w.classify(ctx, current, w.dispatch(ctx, current)); err != nil {
			return Result{}, err
		}
	}

	var c counters
	start := time.Now()
	for i := 0; i < w.cfg.MeasuredRuns; i++ {
		if err := w.pace(ctx); err != nil {
			return Result{}, err
		}
		current = w.route()
		if current == InteractionCustomer {
			c.customerTotal++
		}

		latency, callErr := w.measure(ctx, current)
		if err := w.classify(ctx, current, callErr); err != nil {
			return Result{}, err
		}
		if w.observer != nil {
			w.observer.RecordInteraction(current, latency, callErr)
		}
		if callErr != nil {
			if w.logger != nil {
				w.logger.LogFailure(w.id, current, callErr)
			}
		} else {
			c.successful++
		}
		if current == InteractionCustomer {
			c.transaction += latency
			if callErr == nil {
				c.customerSuccessful++
			}
		}
	}
	elapsed := time.Since(start)

	return Result{
		Worker:                         w.id,
		SuccessfulInteractions:         c.successful,
		MeasuredRuns:                   int64(w.cfg.MeasuredRuns),
		SuccessfulCustomerInteractions: c.customerSuccessful,
		TotalCustomerInteractions:      c.customerTotal,
		Elapsed:                        elapsed,
		TransactionTime:                c.transaction,
	}, nil
}

func (w *Worker) measure(ctx context.Context, kind Interaction) (time.Duration, error) {
	if w.tracer == nil {
		began := time.Now()
		err := w.dispatch(ctx, kind)
		return time.Since(began), err
	}

	spanCtx, span := tracing.StartInteractionSpan(ctx, w.tracer, kind.String(), w.id)
	began := time.Now()
	err := w.dispatch(spanCtx, kind)
	latency := time.Since(began)
	tracing.EndSpan(span, err, attribute.Bool("bookbench.success", err == nil))
	return latency, err
}

func (w *Worker) route() Interaction {
	return Route(w.rnd.Float64()*100, w.cfg.RareThreshold, w.cfg.FrequentThreshold)
}

func (w *Worker) pace(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.pacer == nil {
		return nil
	}
	return w.pacer.Wait(ctx)
}

func (w *Worker) interact(ctx context.Context, kind Interaction) error {
	switch kind {
	case InteractionRare:
		return w.rareStockReplenishment(ctx)
	case InteractionFrequent:
		return w.frequentStockTopup(ctx)
	default:
		return w.customerPurchase(ctx)
	}
}

// classify returns nil when the iteration may proceed, the context error when the run
// was canceled and a CatastrophicError for anything unexpected.
func (w *Worker) classify(ctx context.Context, kind Interaction, err error) error {
	switch {
	case err == nil, IsRecoverable(err):
		return nil
	case isContextError(ctx, err):
		return ctx.Err()
	default:
		return &CatastrophicError{Worker: w.id, Interaction: kind, Err: err}
	}
}
