package scrape

import (
	"context"
	"time"
)

// JobStore persists job state keyed by job ID. Implementations must treat
// terminal states as write-once: a completed or failed job never regresses.
type JobStore interface {
	CreateJob(ctx context.Context, jobID string) error
	GetJob(ctx context.Context, jobID string) (JobState, error)
	CompleteJob(ctx context.Context, jobID string, result BatchResult) error
	FailJob(ctx context.Context, jobID string, errText string) error
}

// Fetcher fetches a URL and returns the raw markup plus metadata.
// A single attempt per call; retry policy belongs to the caller.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Extractor derives page signals from fetched markup. It never fails;
// a signal the markup lacks is simply absent from the result.
type Extractor interface {
	Extract(markup []byte, baseURL string) ExtractionResult
}

// Summarizer turns extracted text into a human-readable summary.
// It always returns a usable string and never an error.
type Summarizer interface {
	Summarize(ctx context.Context, text string, apiKey string) string
}

// Queue provides enqueue/dequeue semantics for scrape jobs.
type Queue interface {
	Enqueue(ctx context.Context, item QueueItem) error
	Dequeue(ctx context.Context) (QueueItem, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
