package scrape

import "time"

// JobStatus represents the lifecycle state of a scrape job.
type JobStatus string

// Job status values persisted in the job store.
const (
	JobStatusPending JobStatus = "pending"
	JobStatusSuccess JobStatus = "success"
	JobStatusFailed  JobStatus = "failed"
)

// IsTerminal reports whether a status can no longer change.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSuccess || s == JobStatusFailed
}

// ExtractionResult holds the signals derived from one fetched page.
// Error set means the fetch failed and every other field is absent.
type ExtractionResult struct {
	URL         string   `json:"url"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price,omitempty"`
	Images      []string `json:"images,omitempty"`
	Text        string   `json:"text,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// ScrapeRecord is the final per-URL output: extraction signals plus the
// summary and advisory suggestions. Immutable after creation.
type ScrapeRecord struct {
	URL         string   `json:"url"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price,omitempty"`
	Images      []string `json:"images,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// BatchResult is the ordered output of one batch, input order preserved.
type BatchResult struct {
	Results []ScrapeRecord `json:"results"`
}

// JobState is the tagged variant stored per job: exactly one of Result or
// Error is meaningful once the status is terminal.
type JobState struct {
	Status JobStatus    `json:"status"`
	Result *BatchResult `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// QueueItem wraps a job ready to run.
type QueueItem struct {
	JobID     string   `json:"job_id"`
	URLs      []string `json:"urls"`
	APIKey    string   `json:"api_key,omitempty"`
	Submitted int64    `json:"submitted"`
}

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	URL     string
	Timeout time.Duration
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}
