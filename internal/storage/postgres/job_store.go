// Package postgres provides a durable job store backed by PostgreSQL, for
// deployments where submitter and worker are separate processes.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pagesift/pagesift/internal/scrape"
)

// ErrJobNotFound is returned when a job ID is unknown to the store.
var ErrJobNotFound = errors.New("job not found")

// DB is the subset of pgxpool.Pool the store needs; pgxmock satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// JobStore persists job state in the scrape_jobs table. Expected schema:
//
//	CREATE TABLE scrape_jobs (
//	    id           TEXT PRIMARY KEY,
//	    status       TEXT NOT NULL,
//	    result       JSONB,
//	    error_text   TEXT,
//	    submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    finished_at  TIMESTAMPTZ
//	);
//
// Terminal transitions are guarded by a status predicate so a finished job
// can never regress or be overwritten.
type JobStore struct {
	db DB
}

// NewJobStore constructs a JobStore over an existing pool or mock.
func NewJobStore(db DB) *JobStore {
	return &JobStore{db: db}
}

// Connect opens a pgx pool and pings it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// CreateJob inserts a new job in pending status.
func (s *JobStore) CreateJob(ctx context.Context, jobID string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO scrape_jobs (id, status) VALUES ($1, $2)`,
		jobID, string(scrape.JobStatusPending),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetJob fetches the current state of a job.
func (s *JobStore) GetJob(ctx context.Context, jobID string) (scrape.JobState, error) {
	var (
		status     string
		resultJSON []byte
		errText    *string
	)
	row := s.db.QueryRow(ctx,
		`SELECT status, result, error_text FROM scrape_jobs WHERE id = $1`,
		jobID,
	)
	if err := row.Scan(&status, &resultJSON, &errText); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return scrape.JobState{}, ErrJobNotFound
		}
		return scrape.JobState{}, fmt.Errorf("select job: %w", err)
	}

	state := scrape.JobState{Status: scrape.JobStatus(status)}
	if errText != nil {
		state.Error = *errText
	}
	if len(resultJSON) > 0 {
		var result scrape.BatchResult
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return scrape.JobState{}, fmt.Errorf("decode job result: %w", err)
		}
		state.Result = &result
	}
	return state, nil
}

// CompleteJob transitions a pending job to success with its batch result.
func (s *JobStore) CompleteJob(ctx context.Context, jobID string, result scrape.BatchResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode job result: %w", err)
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE scrape_jobs SET status = $2, result = $3, finished_at = NOW()
		 WHERE id = $1 AND status = $4`,
		jobID, string(scrape.JobStatusSuccess), resultJSON, string(scrape.JobStatusPending),
	)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("job not found or already finished")
	}
	return nil
}

// FailJob transitions a pending job to failed with an error description.
func (s *JobStore) FailJob(ctx context.Context, jobID string, errText string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE scrape_jobs SET status = $2, error_text = $3, finished_at = NOW()
		 WHERE id = $1 AND status = $4`,
		jobID, string(scrape.JobStatusFailed), errText, string(scrape.JobStatusPending),
	)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("job not found or already finished")
	}
	return nil
}
