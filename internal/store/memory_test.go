package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choo-deploy/deployd/internal/clock"
	"github.com/choo-deploy/deployd/internal/domain"
)

func newTestJob(id, owner, repo, ref string) *domain.Job {
	return &domain.Job{
		ID:    id,
		State: domain.JobStateNew,
		Git:   domain.GitRef{Owner: owner, Repo: repo, Ref: ref},
		Hooks: domain.HookMatrix{},
	}
}

func TestMemory_UpsertThenGet(t *testing.T) {
	m := NewMemory(clock.Real{}, 0)
	ctx := context.Background()

	job := newTestJob("job-1", "acme", "widgets", "main")
	require.NoError(t, m.UpsertJob(ctx, job))

	got, err := m.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", got.ID)
	assert.False(t, got.Modified.IsZero())
}

func TestMemory_GetMissingReturnsErrNotFound(t *testing.T) {
	m := NewMemory(clock.Real{}, 0)

	_, err := m.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_UpsertIsIndependentOfCallerMutation(t *testing.T) {
	m := NewMemory(clock.Real{}, 0)
	ctx := context.Background()

	job := newTestJob("job-1", "acme", "widgets", "main")
	want := newTestJob("job-1", "acme", "widgets", "main")
	require.NoError(t, m.UpsertJob(ctx, job))
	job.State = domain.JobStateFailed
	job.Git.Commit = "mutated-after-store"

	got, err := m.Get(ctx, "job-1")
	require.NoError(t, err)
	if diff := cmp.Diff(want.State, got.State); diff != "" {
		t.Errorf("job state diverged from caller mutation (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Git, got.Git); diff != "" {
		t.Errorf("job git ref diverged from caller mutation (-want +got):\n%s", diff)
	}
}

func TestMemory_FindActiveFiltersByCorrelationKeyAndState(t *testing.T) {
	m := NewMemory(clock.Real{}, 0)
	ctx := context.Background()

	active := newTestJob("job-1", "acme", "widgets", "main")
	require.NoError(t, m.UpsertJob(ctx, active))

	done := newTestJob("job-2", "acme", "widgets", "main")
	done.State = domain.JobStateComplete
	require.NoError(t, m.UpsertJob(ctx, done))

	other := newTestJob("job-3", "acme", "other-repo", "main")
	require.NoError(t, m.UpsertJob(ctx, other))

	found, err := m.FindActive(ctx, "acme", "widgets", "main")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "job-1", found[0].ID)
}

func TestMemory_UpdateStateMissingJobReturnsErrNotFound(t *testing.T) {
	m := NewMemory(clock.Real{}, 0)

	err := m.UpdateState(context.Background(), "missing", domain.JobStateComplete)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_AppendEventStampsDateWhenZero(t *testing.T) {
	c := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	m := NewMemory(c, 0)

	evt := domain.NewEvent(domain.EventJobComplete, "job-1")
	require.NoError(t, m.AppendEvent(context.Background(), &evt))

	events := m.Events()
	require.Len(t, events, 1)
	assert.Equal(t, c.Now(), events[0].Date)
}

func TestMemory_ReapDeletesExpiredJobsOnly(t *testing.T) {
	c := clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	m := NewMemory(c, time.Hour)
	ctx := context.Background()

	require.NoError(t, m.UpsertJob(ctx, newTestJob("job-old", "acme", "widgets", "main")))
	c.Advance(2 * time.Hour)
	require.NoError(t, m.UpsertJob(ctx, newTestJob("job-new", "acme", "widgets", "other")))

	jobsDeleted, _, err := m.Reap(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, jobsDeleted)

	_, err = m.Get(ctx, "job-old")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(ctx, "job-new")
	assert.NoError(t, err)
}
