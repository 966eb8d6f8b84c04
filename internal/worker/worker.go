// Package worker implements the scrape job execution loop.
package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pagesift/pagesift/internal/metrics"
	"github.com/pagesift/pagesift/internal/scrape"
)

// Worker consumes queue items and executes batches through the
// orchestrator. URLs within a job run sequentially; per-URL failures are
// captured into the batch and never abort it. Only a failure outside
// per-URL handling marks the whole job failed. Nothing is retried.
type Worker struct {
	queue        scrape.Queue
	jobStore     scrape.JobStore
	orchestrator *scrape.Orchestrator
	logger       *zap.Logger
}

// New constructs a Worker.
func New(queue scrape.Queue, jobStore scrape.JobStore, orchestrator *scrape.Orchestrator, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		queue:        queue,
		jobStore:     jobStore,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Run blocks, consuming queue items until the context finishes.
func (w *Worker) Run(ctx context.Context) {
	for {
		item, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("queue dequeue failed", zap.Error(err))
			continue
		}
		w.logger.Debug("dequeued job", zap.String("job_id", item.JobID))
		w.processJob(ctx, item)
	}
}

func (w *Worker) processJob(ctx context.Context, item scrape.QueueItem) {
	result, jobErr := w.runBatch(ctx, item)

	if jobErr != nil {
		w.logger.Error("job execution failed", zap.String("job_id", item.JobID), zap.Error(jobErr))
		metrics.ObserveJob(string(scrape.JobStatusFailed))
		if err := w.jobStore.FailJob(ctx, item.JobID, jobErr.Error()); err != nil {
			w.logger.Error("fail job status update", zap.String("job_id", item.JobID), zap.Error(err))
		}
		return
	}

	metrics.ObserveJob(string(scrape.JobStatusSuccess))
	if err := w.jobStore.CompleteJob(ctx, item.JobID, result); err != nil {
		w.logger.Error("complete job status update", zap.String("job_id", item.JobID), zap.Error(err))
	}
}

// runBatch executes the orchestrator once per URL, in input order. A panic
// outside the per-URL guard is an unexpected job-level failure.
func (w *Worker) runBatch(ctx context.Context, item scrape.QueueItem) (result scrape.BatchResult, jobErr error) {
	defer func() {
		if rec := recover(); rec != nil {
			jobErr = fmt.Errorf("job execution panic: %v", rec)
		}
	}()

	records := make([]scrape.ScrapeRecord, 0, len(item.URLs))
	for _, url := range item.URLs {
		records = append(records, w.processURL(ctx, item, url))
	}
	return scrape.BatchResult{Results: records}, nil
}

// processURL guards a single orchestration call so one bad page cannot
// take down the batch.
func (w *Worker) processURL(ctx context.Context, item scrape.QueueItem, url string) (record scrape.ScrapeRecord) {
	defer func() {
		if rec := recover(); rec != nil {
			w.logger.Error("url processing panic",
				zap.String("job_id", item.JobID),
				zap.String("url", url),
				zap.Any("panic", rec),
			)
			record = scrape.ScrapeRecord{URL: url, Error: fmt.Sprintf("%v", rec)}
		}
	}()

	record = w.orchestrator.Process(ctx, url, item.APIKey)
	if record.Error != "" {
		metrics.ObservePage("failed")
	} else {
		metrics.ObservePage("succeeded")
	}
	return record
}
