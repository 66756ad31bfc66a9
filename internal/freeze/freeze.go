// Package freeze implements the Freeze Registry (C3): a per-application
// boolean flag with TTL, backed by the same KV store as the lock service
// under a distinct prefix.
package freeze

import (
	"context"
	"fmt"
	"time"

	"github.com/choo-deploy/deployd/internal/kv"
)

const defaultTTL = 24 * time.Hour // 86400s, per spec default

// Config tunes the base path and TTL.
type Config struct {
	BasePrefix string
	TTL        time.Duration
}

func (c Config) withDefaults() Config {
	if c.TTL == 0 {
		c.TTL = defaultTTL
	}
	return c
}

// Registry is the Freeze Registry.
type Registry struct {
	kv  kv.KV
	cfg Config
}

// New builds a freeze Registry over the given KV backing.
func New(store kv.KV, cfg Config) *Registry {
	return &Registry{kv: store, cfg: cfg.withDefaults()}
}

func (r *Registry) keyFor(env, owner, repo, ref string) string {
	return fmt.Sprintf("%s/orchestrator/jobs/%s/%s/%s/%s/frozen", r.cfg.BasePrefix, env, owner, repo, ref)
}

// Set writes the freeze flag. It always writes explicitly — including
// set(false) — with a TTL, so an in-progress unfreeze window stays visible
// even if a subsequent write lags.
func (r *Registry) Set(ctx context.Context, env, owner, repo, ref string, frozen bool) error {
	value := "false"
	if frozen {
		value = "true"
	}
	return r.kv.Put(ctx, r.keyFor(env, owner, repo, ref), value, r.cfg.TTL)
}

// IsFrozen reports the current freeze state. Absence means not-frozen.
func (r *Registry) IsFrozen(ctx context.Context, env, owner, repo, ref string) (bool, error) {
	value, ok, err := r.kv.Get(ctx, r.keyFor(env, owner, repo, ref))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return value == "true", nil
}
