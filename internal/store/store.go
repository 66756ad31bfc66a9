// Package store implements the Job Store (C4): a durable, indexed store
// of jobs and events with filter/find/upsert/update-state operations,
// grounded on the teacher's internal/daemon/db package (modernc.org/sqlite,
// WAL mode, migrate-on-open) generalized from its runs/units/events tables
// to this engine's jobs/events tables.
package store

import (
	"context"
	"errors"

	"github.com/choo-deploy/deployd/internal/domain"
)

// ErrNotFound is returned by Get when no job matches the given ID.
var ErrNotFound = errors.New("store: job not found")

// JobStore is the Job Store contract (§4.3, §6.6).
type JobStore interface {
	// UpsertJob replaces-by job.ID, stamping Modified and Expiry. Inserts
	// if the ID is unknown. Idempotent per job snapshot.
	UpsertJob(ctx context.Context, job *domain.Job) error

	// FindActive returns jobs for (owner, repo, ref) with
	// state in {NEW, SCHEDULED}, sorted by Modified ascending.
	FindActive(ctx context.Context, owner, repo, ref string) ([]*domain.Job, error)

	// Get returns the job by ID, or ErrNotFound.
	Get(ctx context.Context, jobID string) (*domain.Job, error)

	// UpdateState sets state, Modified, and Expiry for jobID.
	UpdateState(ctx context.Context, jobID string, newState domain.JobState) error

	// AppendEvent inserts an event record. The event store is write-only
	// in the core — there is no query surface here (§1 Non-goals).
	AppendEvent(ctx context.Context, evt *domain.Event) error

	// Reap deletes jobs whose _expiry has passed, returning the counts
	// removed. SQLite also deletes the events recorded against those
	// jobs; Memory keeps its events and reports 0 of them. Used by the
	// background TTL expiry goroutine.
	Reap(ctx context.Context) (jobsDeleted, eventsDeleted int, err error)

	Close() error
}
