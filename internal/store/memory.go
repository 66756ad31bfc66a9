package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/choo-deploy/deployd/internal/clock"
	"github.com/choo-deploy/deployd/internal/domain"
)

// Memory is an in-process JobStore, grounded on the teacher's
// hand-rolled test fakes (e.g. internal/worker's mockEventBus) rather
// than a mocking framework. It is used by tests; the CLI always opens
// the SQLite store.
type Memory struct {
	mu        sync.Mutex
	jobs      map[string]*domain.Job
	events    []*domain.Event
	clock     clock.Clock
	retention time.Duration
}

func NewMemory(c clock.Clock, retention time.Duration) *Memory {
	if retention == 0 {
		retention = defaultJobRetention
	}
	return &Memory{jobs: make(map[string]*domain.Job), clock: c, retention: retention}
}

func (m *Memory) UpsertJob(_ context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	job.Modified = now
	job.Expiry = now.Add(m.retention)
	m.jobs[job.ID] = job.Clone()
	return nil
}

func (m *Memory) FindActive(_ context.Context, owner, repo, ref string) ([]*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Job
	for _, j := range m.jobs {
		if j.Git.Owner == owner && j.Git.Repo == repo && j.Git.Ref == ref && j.State.IsActive() {
			out = append(out, j.Clone())
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Modified.Before(out[k].Modified) })
	return out, nil
}

func (m *Memory) Get(_ context.Context, jobID string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	return j.Clone(), nil
}

func (m *Memory) UpdateState(_ context.Context, jobID string, newState domain.JobState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	now := m.clock.Now()
	j.State = newState
	j.Modified = now
	j.Expiry = now.Add(m.retention)
	return nil
}

func (m *Memory) AppendEvent(_ context.Context, evt *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if evt.Date.IsZero() {
		evt.Date = m.clock.Now()
	}
	cp := *evt
	m.events = append(m.events, &cp)
	return nil
}

// Events returns a snapshot of all recorded events, in append order. This
// is test/debug-only surface — it is not part of the JobStore interface,
// since the core treats the event log as write-only (§1 Non-goals).
func (m *Memory) Events() []*domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *Memory) Reap(_ context.Context) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	jobsDeleted := 0
	for id, j := range m.jobs {
		if j.Expiry.Before(now) {
			delete(m.jobs, id)
			jobsDeleted++
		}
	}
	return jobsDeleted, 0, nil
}

func (m *Memory) Close() error { return nil }
