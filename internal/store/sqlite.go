package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/choo-deploy/deployd/internal/clock"
	"github.com/choo-deploy/deployd/internal/domain"
)

// retention defaults, per §4.3 and Design Notes' open question on events
// vs. jobs retention differing: jobs default to four weeks; events have
// no retention of their own — Reap deletes an expired job's events in the
// same pass that deletes the job.
const defaultJobRetention = 4 * 7 * 24 * time.Hour

// SQLite is the durable Job Store backed by modernc.org/sqlite (pure Go,
// no cgo), opened in WAL mode with foreign keys enabled, mirroring
// internal/daemon/db.Open/migrate.
type SQLite struct {
	conn      *sql.DB
	clock     clock.Clock
	retention time.Duration
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
func OpenSQLite(path string, c clock.Clock, retention time.Duration) (*SQLite, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}

	if retention == 0 {
		retention = defaultJobRetention
	}
	s := &SQLite{conn: conn, clock: c, retention: retention}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: run migrations: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error { return s.conn.Close() }

func (s *SQLite) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS jobs (
    id           TEXT PRIMARY KEY,
    owner        TEXT NOT NULL,
    repo         TEXT NOT NULL,
    ref          TEXT NOT NULL,
    commit_sha   TEXT,
    state        TEXT NOT NULL,
    force_deploy INTEGER NOT NULL DEFAULT 0,
    config_json  TEXT,
    git_json     TEXT,
    hooks_json   TEXT,
    modified     DATETIME NOT NULL,
    expiry       DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    id           TEXT PRIMARY KEY,
    job_id       TEXT NOT NULL,
    component    TEXT NOT NULL,
    event_type   TEXT NOT NULL,
    date         DATETIME NOT NULL,
    details_json TEXT,
    meta_json    TEXT
);

CREATE INDEX IF NOT EXISTS idx_jobs_correlation ON jobs(owner, repo, ref, commit_sha);
CREATE INDEX IF NOT EXISTS idx_jobs_state ON jobs(state);
CREATE INDEX IF NOT EXISTS idx_jobs_modified ON jobs(modified DESC);
CREATE INDEX IF NOT EXISTS idx_jobs_expiry ON jobs(expiry);
CREATE INDEX IF NOT EXISTS idx_events_job_id ON events(job_id);
`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLite) UpsertJob(ctx context.Context, job *domain.Job) error {
	now := s.clock.Now()
	job.Modified = now
	job.Expiry = now.Add(s.retention)

	configJSON, err := json.Marshal(job.Config)
	if err != nil {
		return fmt.Errorf("store: marshal config: %w", err)
	}
	gitJSON, err := json.Marshal(job.Git)
	if err != nil {
		return fmt.Errorf("store: marshal git: %w", err)
	}
	hooksJSON, err := json.Marshal(job.Hooks)
	if err != nil {
		return fmt.Errorf("store: marshal hooks: %w", err)
	}

	query := `
		INSERT INTO jobs (id, owner, repo, ref, commit_sha, state, force_deploy, config_json, git_json, hooks_json, modified, expiry)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner = excluded.owner,
			repo = excluded.repo,
			ref = excluded.ref,
			commit_sha = excluded.commit_sha,
			state = excluded.state,
			force_deploy = excluded.force_deploy,
			config_json = excluded.config_json,
			git_json = excluded.git_json,
			hooks_json = excluded.hooks_json,
			modified = excluded.modified,
			expiry = excluded.expiry
	`
	_, err = s.conn.ExecContext(ctx, query,
		job.ID, job.Git.Owner, job.Git.Repo, job.Git.Ref, job.Git.Commit,
		string(job.State), job.ForceDeploy, string(configJSON), string(gitJSON), string(hooksJSON),
		job.Modified, job.Expiry,
	)
	if err != nil {
		return fmt.Errorf("store: upsert job: %w", err)
	}
	return nil
}

func (s *SQLite) scanJob(row interface {
	Scan(dest ...any) error
}) (*domain.Job, error) {
	var (
		id, owner, repo, ref, commitSHA, state string
		forceDeploy                            bool
		configJSON, gitJSON, hooksJSON          sql.NullString
		modified, expiry                       time.Time
	)
	if err := row.Scan(&id, &owner, &repo, &ref, &commitSHA, &state, &forceDeploy, &configJSON, &gitJSON, &hooksJSON, &modified, &expiry); err != nil {
		return nil, err
	}

	job := &domain.Job{
		ID:          id,
		State:       domain.JobState(state),
		ForceDeploy: forceDeploy,
		Modified:    modified,
		Expiry:      expiry,
	}
	if configJSON.Valid && configJSON.String != "" {
		if err := json.Unmarshal([]byte(configJSON.String), &job.Config); err != nil {
			return nil, fmt.Errorf("store: unmarshal config: %w", err)
		}
	}
	if gitJSON.Valid && gitJSON.String != "" {
		if err := json.Unmarshal([]byte(gitJSON.String), &job.Git); err != nil {
			return nil, fmt.Errorf("store: unmarshal git: %w", err)
		}
	}
	if hooksJSON.Valid && hooksJSON.String != "" {
		if err := json.Unmarshal([]byte(hooksJSON.String), &job.Hooks); err != nil {
			return nil, fmt.Errorf("store: unmarshal hooks: %w", err)
		}
	}
	return job, nil
}

const jobColumns = `id, owner, repo, ref, commit_sha, state, force_deploy, config_json, git_json, hooks_json, modified, expiry`

func (s *SQLite) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, jobID)
	job, err := s.scanJob(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get job: %w", err)
	}
	return job, nil
}

func (s *SQLite) FindActive(ctx context.Context, owner, repo, ref string) ([]*domain.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE owner = ? AND repo = ? AND ref = ? AND state IN (?, ?)
		ORDER BY modified ASC
	`
	rows, err := s.conn.QueryContext(ctx, query, owner, repo, ref, string(domain.JobStateNew), string(domain.JobStateScheduled))
	if err != nil {
		return nil, fmt.Errorf("store: find active: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		job, err := s.scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (s *SQLite) UpdateState(ctx context.Context, jobID string, newState domain.JobState) error {
	now := s.clock.Now()
	result, err := s.conn.ExecContext(ctx,
		`UPDATE jobs SET state = ?, modified = ?, expiry = ? WHERE id = ?`,
		string(newState), now, now.Add(s.retention), jobID,
	)
	if err != nil {
		return fmt.Errorf("store: update state: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) AppendEvent(ctx context.Context, evt *domain.Event) error {
	if evt.Date.IsZero() {
		evt.Date = s.clock.Now()
	}
	detailsJSON, err := json.Marshal(evt.Details)
	if err != nil {
		return fmt.Errorf("store: marshal event details: %w", err)
	}
	metaJSON, err := json.Marshal(evt.Meta)
	if err != nil {
		return fmt.Errorf("store: marshal event meta: %w", err)
	}
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO events (id, job_id, component, event_type, date, details_json, meta_json) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		evt.ID, evt.JobID, evt.Component, string(evt.Type), evt.Date, string(detailsJSON), string(metaJSON),
	)
	if err != nil {
		return fmt.Errorf("store: append event: %w", err)
	}
	return nil
}

func (s *SQLite) Reap(ctx context.Context) (int, int, error) {
	now := s.clock.Now()

	res, err := s.conn.ExecContext(ctx, `DELETE FROM events WHERE job_id IN (SELECT id FROM jobs WHERE expiry < ?)`, now)
	if err != nil {
		return 0, 0, fmt.Errorf("store: reap events: %w", err)
	}
	eventsDeleted, _ := res.RowsAffected()

	res, err = s.conn.ExecContext(ctx, `DELETE FROM jobs WHERE expiry < ?`, now)
	if err != nil {
		return 0, int(eventsDeleted), fmt.Errorf("store: reap jobs: %w", err)
	}
	jobsDeleted, _ := res.RowsAffected()

	return int(jobsDeleted), int(eventsDeleted), nil
}

// StartReaper runs Reap on a ticker until ctx is cancelled, mirroring the
// background-goroutine shape the teacher's daemon uses for its job
// supervisor loop.
func (s *SQLite) StartReaper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Reap(ctx)
			}
		}
	}()
}
