// Package memory provides an in-memory job store for development/testing.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/pagesift/pagesift/internal/scrape"
)

// ErrJobNotFound is returned when a job ID is unknown to the store.
var ErrJobNotFound = errors.New("job not found")

// JobStore keeps job state in a map. Terminal states are write-once: once
// a job succeeds or fails, further transitions are rejected so polling
// never observes a state regression.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]scrape.JobState
}

// NewJobStore constructs a JobStore.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]scrape.JobState),
	}
}

// CreateJob stores a new job in pending status.
func (s *JobStore) CreateJob(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[jobID]; exists {
		return errors.New("job already exists")
	}
	s.jobs[jobID] = scrape.JobState{Status: scrape.JobStatusPending}
	return nil
}

// GetJob fetches the current state of a job.
func (s *JobStore) GetJob(_ context.Context, jobID string) (scrape.JobState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.jobs[jobID]
	if !ok {
		return scrape.JobState{}, ErrJobNotFound
	}
	return state, nil
}

// CompleteJob transitions a pending job to success with its batch result.
func (s *JobStore) CompleteJob(_ context.Context, jobID string, result scrape.BatchResult) error {
	return s.finish(jobID, scrape.JobState{
		Status: scrape.JobStatusSuccess,
		Result: &result,
	})
}

// FailJob transitions a pending job to failed with an error description.
func (s *JobStore) FailJob(_ context.Context, jobID string, errText string) error {
	return s.finish(jobID, scrape.JobState{
		Status: scrape.JobStatusFailed,
		Error:  errText,
	})
}

func (s *JobStore) finish(jobID string, terminal scrape.JobState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	if current.Status.IsTerminal() {
		return errors.New("job already finished")
	}
	s.jobs[jobID] = terminal
	return nil
}
