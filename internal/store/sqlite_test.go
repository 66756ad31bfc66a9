package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choo-deploy/deployd/internal/clock"
	"github.com/choo-deploy/deployd/internal/domain"
)

func openTestSQLite(t *testing.T, c clock.Clock, retention time.Duration) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQLite(path, c, retention)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_UpsertThenGetRoundTrips(t *testing.T) {
	s := openTestSQLite(t, clock.Real{}, 0)
	ctx := context.Background()

	job := newTestJob("job-1", "acme", "widgets", "main")
	job.Config = map[string]any{"security_profile": "restricted"}
	require.NoError(t, s.UpsertJob(ctx, job))

	got, err := s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", got.ID)
	assert.Equal(t, "acme", got.Git.Owner)
	assert.Equal(t, "restricted", got.Config["security_profile"])
}

func TestSQLite_UpsertOverwritesExistingRow(t *testing.T) {
	s := openTestSQLite(t, clock.Real{}, 0)
	ctx := context.Background()

	job := newTestJob("job-1", "acme", "widgets", "main")
	require.NoError(t, s.UpsertJob(ctx, job))

	job.State = domain.JobStateComplete
	require.NoError(t, s.UpsertJob(ctx, job))

	got, err := s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateComplete, got.State)
}

func TestSQLite_GetMissingReturnsErrNotFound(t *testing.T) {
	s := openTestSQLite(t, clock.Real{}, 0)

	_, err := s.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_FindActiveFiltersByCorrelationKeyAndOrdersByModified(t *testing.T) {
	c := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s := openTestSQLite(t, c, 0)
	ctx := context.Background()

	older := newTestJob("job-older", "acme", "widgets", "main")
	older.State = domain.JobStateScheduled
	require.NoError(t, s.UpsertJob(ctx, older))

	c.Advance(time.Minute)
	newer := newTestJob("job-newer", "acme", "widgets", "main")
	newer.State = domain.JobStateNew
	require.NoError(t, s.UpsertJob(ctx, newer))

	done := newTestJob("job-done", "acme", "widgets", "main")
	done.State = domain.JobStateComplete
	require.NoError(t, s.UpsertJob(ctx, done))

	other := newTestJob("job-other-ref", "acme", "widgets", "feature")
	require.NoError(t, s.UpsertJob(ctx, other))

	found, err := s.FindActive(ctx, "acme", "widgets", "main")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "job-older", found[0].ID)
	assert.Equal(t, "job-newer", found[1].ID)
}

func TestSQLite_UpdateStateUnknownJobReturnsErrNotFound(t *testing.T) {
	s := openTestSQLite(t, clock.Real{}, 0)

	err := s.UpdateState(context.Background(), "missing", domain.JobStateComplete)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_UpdateStateUpdatesExistingJob(t *testing.T) {
	s := openTestSQLite(t, clock.Real{}, 0)
	ctx := context.Background()

	job := newTestJob("job-1", "acme", "widgets", "main")
	require.NoError(t, s.UpsertJob(ctx, job))

	require.NoError(t, s.UpdateState(ctx, "job-1", domain.JobStateFailed))

	got, err := s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateFailed, got.State)
}

func TestSQLite_AppendEventStampsDateWhenZero(t *testing.T) {
	c := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s := openTestSQLite(t, c, 0)
	ctx := context.Background()

	job := newTestJob("job-1", "acme", "widgets", "main")
	require.NoError(t, s.UpsertJob(ctx, job))

	evt := domain.NewEvent(domain.EventJobComplete, "job-1")
	require.NoError(t, s.AppendEvent(ctx, &evt))

	var date time.Time
	row := s.conn.QueryRowContext(ctx, `SELECT date FROM events WHERE job_id = ?`, "job-1")
	require.NoError(t, row.Scan(&date))
	assert.True(t, date.Equal(c.Now()))
}

func TestSQLite_ReapDeletesExpiredJobsAndCascadesEvents(t *testing.T) {
	c := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s := openTestSQLite(t, c, time.Hour)
	ctx := context.Background()

	expiring := newTestJob("job-expiring", "acme", "widgets", "main")
	require.NoError(t, s.UpsertJob(ctx, expiring))
	evt := domain.NewEvent(domain.EventJobComplete, "job-expiring")
	require.NoError(t, s.AppendEvent(ctx, &evt))

	c.Advance(2 * time.Hour)
	surviving := newTestJob("job-surviving", "acme", "widgets", "other")
	require.NoError(t, s.UpsertJob(ctx, surviving))

	jobsDeleted, eventsDeleted, err := s.Reap(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, jobsDeleted)
	assert.Equal(t, 1, eventsDeleted)

	_, err = s.Get(ctx, "job-expiring")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "job-surviving")
	assert.NoError(t, err)

	var count int
	row := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE job_id = ?`, "job-expiring")
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 0, count)
}
