package postgres

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/pagesift/pagesift/internal/scrape"
)

func newMockStore(t *testing.T) (*JobStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewJobStore(mock), mock
}

func TestCreateJobInsertsPendingRow(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO scrape_jobs").
		WithArgs("job-1", "pending").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.CreateJob(context.Background(), "job-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetJobPending(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT status, result, error_text FROM scrape_jobs").
		WithArgs("job-1").
		WillReturnRows(pgxmock.NewRows([]string{"status", "result", "error_text"}).
			AddRow("pending", []byte(nil), (*string)(nil)))

	state, err := store.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	require.Equal(t, scrape.JobStatusPending, state.Status)
	require.Nil(t, state.Result)
	require.Empty(t, state.Error)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetJobSuccessDecodesResult(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	result := scrape.BatchResult{Results: []scrape.ScrapeRecord{{URL: "https://example.com", Summary: "ok"}}}
	resultJSON, err := json.Marshal(result)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT status, result, error_text FROM scrape_jobs").
		WithArgs("job-1").
		WillReturnRows(pgxmock.NewRows([]string{"status", "result", "error_text"}).
			AddRow("success", resultJSON, (*string)(nil)))

	state, err := store.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	require.Equal(t, scrape.JobStatusSuccess, state.Status)
	require.NotNil(t, state.Result)
	require.Equal(t, "https://example.com", state.Result.Results[0].URL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetJobNotFound(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT status, result, error_text FROM scrape_jobs").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := store.GetJob(context.Background(), "missing")
	require.ErrorIs(t, err, ErrJobNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteJobGuardsPendingStatus(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	result := scrape.BatchResult{Results: []scrape.ScrapeRecord{{URL: "https://example.com"}}}
	resultJSON, err := json.Marshal(result)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE scrape_jobs SET status").
		WithArgs("job-1", "success", resultJSON, "pending").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.CompleteJob(context.Background(), "job-1", result))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteJobAlreadyFinished(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE scrape_jobs SET status").
		WithArgs("job-1", "success", []byte(`{"results":null}`), "pending").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.CompleteJob(context.Background(), "job-1", scrape.BatchResult{})
	require.EqualError(t, err, "job not found or already finished")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFailJobWritesErrorText(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE scrape_jobs SET status").
		WithArgs("job-1", "failed", "boom", "pending").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.FailJob(context.Background(), "job-1", "boom"))
	require.NoError(t, mock.ExpectationsWereMet())
}
