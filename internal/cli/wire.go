package cli

import (
	"fmt"

	"github.com/choo-deploy/deployd/internal/ambientconfig"
	"github.com/choo-deploy/deployd/internal/appconfig"
	"github.com/choo-deploy/deployd/internal/clock"
	"github.com/choo-deploy/deployd/internal/core"
	"github.com/choo-deploy/deployd/internal/deploy"
	"github.com/choo-deploy/deployd/internal/freeze"
	"github.com/choo-deploy/deployd/internal/idgen"
	"github.com/choo-deploy/deployd/internal/kv"
	"github.com/choo-deploy/deployd/internal/lock"
	"github.com/choo-deploy/deployd/internal/notify"
	"github.com/choo-deploy/deployd/internal/store"
	"github.com/choo-deploy/deployd/internal/undeploy"
)

// wired bundles the assembled collaborators a command needs, mirroring
// the way the teacher's daemon command wires an Orchestrator by hand
// rather than through a DI framework.
type wired struct {
	Core  *core.Core
	Store store.JobStore
}

// buildCore assembles a Core from an ambientconfig.Config, wiring the
// SQLite-backed job store, an in-process KV for locks and freeze state,
// the terminal notifier, and the HTTP deploy/undeploy clients.
func buildCore(cfg *ambientconfig.Config) (*wired, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := clock.Real{}
	ids := idgen.Default{}

	jobStore, err := store.OpenSQLite(cfg.DBPath, c, cfg.JobRetention)
	if err != nil {
		return nil, fmt.Errorf("cli: open job store: %w", err)
	}

	backing := kv.NewMemory(nil)
	locks := lock.New(backing, c, ids, lock.Config{TTL: cfg.LockTTL})
	freezeRegistry := freeze.New(backing, freeze.Config{TTL: cfg.FreezeTTL})

	notifiers := notify.Registry{
		"terminal": notify.NewTerminal(),
	}

	configLoader := appconfig.NewYAMLLoader(cfg.ConfigRoot)

	coreObj := core.New(
		c, ids, locks, freezeRegistry, jobStore,
		notifiers, deploy.NewHTTPClient(), undeploy.NewHTTPClient(), configLoader,
		core.Config{Env: cfg.Env},
	)

	return &wired{Core: coreObj, Store: jobStore}, nil
}
