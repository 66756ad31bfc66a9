// Package correlator implements the Hook Correlator (C5): given a hook
// signal, locate-or-create the active job for its correlation key and
// update its hook/commit state. Must be called under the application
// lock (§4.4) — the lock, not a unique index, is what gives the "at most
// one active job per key" invariant (§4.3 Algorithmic notes).
package correlator

import (
	"context"
	"fmt"

	"github.com/choo-deploy/deployd/internal/appconfig"
	"github.com/choo-deploy/deployd/internal/clock"
	"github.com/choo-deploy/deployd/internal/domain"
	"github.com/choo-deploy/deployd/internal/idgen"
	"github.com/choo-deploy/deployd/internal/store"
)

type Correlator struct {
	store store.JobStore
	clock clock.Clock
	ids   idgen.IDGen
}

func New(s store.JobStore, c clock.Clock, ids idgen.IDGen) *Correlator {
	return &Correlator{store: s, clock: c, ids: ids}
}

// Correlate finds or creates the active job for (owner, repo, ref). If an
// active job exists and commit is new, it is appended to the commit set,
// becomes the current commit, and every enabled hook is reset to pending.
// If commit is not new (duplicate or superseded arrival), the job is
// returned unchanged — callers compare job.Git.Commit against the
// incoming commit to detect the superseded case and record
// COMMIT_IGNORED themselves (§4.10 step 2).
func (c *Correlator) Correlate(ctx context.Context, cfg *appconfig.Evaluated, owner, repo, ref, commit string, forceDeploy bool) (*domain.Job, error) {
	active, err := c.store.FindActive(ctx, owner, repo, ref)
	if err != nil {
		return nil, fmt.Errorf("correlator: find active: %w", err)
	}

	if len(active) > 0 {
		// Tie-break: most-recently-modified, should invariant 1 ever be
		// violated (it should not arise under the lock, but is possible).
		job := active[len(active)-1]

		if commit != "" && !job.Git.HasCommit(commit) {
			job.Git.CommitSet = append(job.Git.CommitSet, commit)
			job.Git.Commit = commit
			resetEnabledHooks(job, cfg)
			job.Config = cfg.Snapshot()
			if err := c.store.UpsertJob(ctx, job); err != nil {
				return nil, fmt.Errorf("correlator: upsert updated job: %w", err)
			}
		}
		return job, nil
	}

	job := &domain.Job{
		ID:          c.ids.NewJobID(),
		State:       domain.JobStateNew,
		Config:      cfg.Snapshot(),
		ForceDeploy: forceDeploy,
		Git: domain.GitRef{
			Owner:  owner,
			Repo:   repo,
			Ref:    ref,
			Commit: commit,
		},
		Hooks: enabledHookMatrix(cfg),
	}
	if commit != "" {
		job.Git.CommitSet = []string{commit}
	}

	if err := c.store.AppendEvent(ctx, eventFor(c, job)); err != nil {
		return nil, fmt.Errorf("correlator: append NEW_JOB: %w", err)
	}
	if err := c.store.UpsertJob(ctx, job); err != nil {
		return nil, fmt.Errorf("correlator: upsert new job: %w", err)
	}
	return job, nil
}

func eventFor(c *Correlator, job *domain.Job) *domain.Event {
	evt := domain.NewEvent(domain.EventNewJob, job.ID).WithDetails(map[string]any{
		"owner":  job.Git.Owner,
		"repo":   job.Git.Repo,
		"ref":    job.Git.Ref,
		"commit": job.Git.Commit,
	})
	evt.ID = c.ids.NewEventID()
	evt.Date = c.clock.Now()
	return &evt
}

// enabledHookMatrix builds the initial hook matrix per §4.4.1: every
// name under every hook type with enabled == true starts pending; disabled
// hooks are absent entirely.
func enabledHookMatrix(cfg *appconfig.Evaluated) domain.HookMatrix {
	matrix := make(domain.HookMatrix)
	for typ, names := range cfg.Hooks {
		for name, hc := range names {
			if !hc.Enabled {
				continue
			}
			matrix.Set(typ, name, domain.HookStatusPending)
		}
	}
	return matrix
}

// resetEnabledHooks reinitializes the job's hook matrix to pending for
// every currently-enabled hook, per the "a new commit supersedes the
// previous one" rule (§4.4).
func resetEnabledHooks(job *domain.Job, cfg *appconfig.Evaluated) {
	job.Hooks = enabledHookMatrix(cfg)
}
