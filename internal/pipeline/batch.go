package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrStdinReused is set on every job after the first that reads standard input.
var ErrStdinReused = errors.New("standard input can only be read once per batch")

// DefaultBatchConcurrency is the number of inputs converted at once when
// WithConcurrency is not given.
const DefaultBatchConcurrency = 4

// BatchProcessor handles concurrent conversion of multiple inputs.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-input execution
// 2. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each input.
	// We use a factory to ensure each input gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent conversions.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent conversions.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultBatchConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch converts every input and returns one Job per input, in
// argument order.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Failed jobs do not stop the others; their error is kept in Job.Err.
// The returned error is non-nil only when ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, inputs []string) ([]*Job, error) {
	bp.logger.Debug("starting batch processing",
		"total_inputs", len(inputs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own index.
	runID := uuid.NewString()
	jobs := make([]*Job, len(inputs))
	stdinSeen := false
	for i, input := range inputs {
		jobs[i] = NewJob(input)
		jobs[i].RunID = runID
		if input == StdinInput {
			if stdinSeen {
				jobs[i].Err = ErrStdinReused
			}
			stdinSeen = true
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i := range jobs {
		g.Go(func() error {
			job := jobs[i]
			if job.Err != nil {
				return nil
			}

			select {
			case <-gctx.Done():
				job.Err = gctx.Err()
				return nil
			default:
			}

			_ = bp.pipelineFactory().Execute(gctx, job) //nolint:errcheck // Error is stored in job
			if job.Err != nil {
				bp.logger.Warn("conversion failed",
					"input", job.Source(),
					"error", job.Err,
				)
			}
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // Goroutines never return errors

	bp.logger.Debug("batch processing complete",
		"total_inputs", len(inputs),
		"elapsed", time.Since(startTime),
	)

	return jobs, ctx.Err()
}
