// Package lock implements the Distributed Lock Service (C2): per-application
// mutual exclusion with TTL, grounded on the original orchestrator's
// services/distributed_lock.py (etcd compare-and-set create/delete) and
// reimplemented over the kv.KV interface so any backing store can serve it.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/choo-deploy/deployd/internal/apperrors"
	"github.com/choo-deploy/deployd/internal/clock"
	"github.com/choo-deploy/deployd/internal/idgen"
	"github.com/choo-deploy/deployd/internal/kv"
)

const defaultBasePrefix = ""

// Lock is a held lease on an application key.
type Lock struct {
	Key        string
	OwnerToken string
	TTL        time.Duration
	ExpiresAt  time.Time
}

// Config tunes the retry budget and TTL. Zero values fall back to the
// spec's documented defaults (ttl_lock=600s, N_lock=20, d_lock=5s).
type Config struct {
	BasePrefix  string
	TTL         time.Duration
	MaxAttempts int
	Delay       time.Duration
}

func (c Config) withDefaults() Config {
	if c.TTL == 0 {
		c.TTL = 600 * time.Second
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 20
	}
	if c.Delay == 0 {
		c.Delay = 5 * time.Second
	}
	if c.BasePrefix == "" {
		c.BasePrefix = defaultBasePrefix
	}
	return c
}

// Service is the Distributed Lock Service.
type Service struct {
	kv    kv.KV
	clock clock.Clock
	ids   idgen.IDGen
	cfg   Config
}

// New builds a lock Service over the given KV backing.
func New(store kv.KV, c clock.Clock, ids idgen.IDGen, cfg Config) *Service {
	return &Service{kv: store, clock: c, ids: ids, cfg: cfg.withDefaults()}
}

func (s *Service) keyFor(appKey string) string {
	return fmt.Sprintf("%s/locks/apps/%s", s.cfg.BasePrefix, appKey)
}

// Acquire attempts a compare-and-set create of the lock key with a fresh
// owner token, retrying up to MaxAttempts times with a fixed delay on
// contention. Exceeding the budget returns a LOCKED apperrors.JobError,
// matching the pipeline's "surfaces a retryable error" policy once the
// caller's own retry budget (this is that budget) is exhausted.
func (s *Service) Acquire(ctx context.Context, appKey string) (*Lock, error) {
	key := s.keyFor(appKey)
	token := s.ids.NewJobID()

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		err := s.kv.CreateIfAbsent(ctx, key, token, s.cfg.TTL)
		if err == nil {
			return &Lock{
				Key:        key,
				OwnerToken: token,
				TTL:        s.cfg.TTL,
				ExpiresAt:  s.clock.Now().Add(s.cfg.TTL),
			}, nil
		}
		if !errors.Is(err, kv.ErrKeyExists) {
			return nil, fmt.Errorf("lock: acquire %s: %w", appKey, err)
		}

		if attempt < s.cfg.MaxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.cfg.Delay):
			}
		}
	}

	return nil, apperrors.LockedError(key)
}

// Release performs a compare-and-delete requiring the stored value to
// equal the held owner token. A mismatch or absent key is not an error —
// the lock already expired or was stolen — and returns false.
func (s *Service) Release(ctx context.Context, l *Lock) (bool, error) {
	if l == nil {
		return false, nil
	}
	return s.kv.CompareAndDelete(ctx, l.Key, l.OwnerToken)
}
