// Package core wires C2-C9 into the two top-level orchestration flows
// (C10) and the error router hand-off (C11). Per the Design Notes'
// guidance to replace global singletons (celery app, store factory) with
// explicit dependency injection, every collaborator is injected into one
// Core object, grounded on the teacher's orchestrator.Orchestrator (which
// holds bus/scheduler/pool/git/github the same way).
package core

import (
	"time"

	"github.com/choo-deploy/deployd/internal/appconfig"
	"github.com/choo-deploy/deployd/internal/clock"
	"github.com/choo-deploy/deployd/internal/correlator"
	"github.com/choo-deploy/deployd/internal/deploy"
	"github.com/choo-deploy/deployd/internal/freeze"
	"github.com/choo-deploy/deployd/internal/idgen"
	"github.com/choo-deploy/deployd/internal/lock"
	"github.com/choo-deploy/deployd/internal/notify"
	"github.com/choo-deploy/deployd/internal/pipeline"
	"github.com/choo-deploy/deployd/internal/store"
	"github.com/choo-deploy/deployd/internal/undeploy"
)

// Config bundles the tunables named throughout §4/§5; zero values fall
// back to the spec's documented defaults.
type Config struct {
	Env string // deployment environment namespace used in application keys

	SoftTimeLimit time.Duration
	HardTimeLimit time.Duration
	ChordInterval time.Duration

	WaitPolicy pipeline.Policy
}

func (c Config) withDefaults() Config {
	if c.Env == "" {
		c.Env = "prod"
	}
	if c.SoftTimeLimit == 0 {
		c.SoftTimeLimit = 600 * time.Second
	}
	if c.HardTimeLimit == 0 {
		c.HardTimeLimit = 1800 * time.Second
	}
	if c.ChordInterval == 0 {
		c.ChordInterval = 20 * time.Second
	}
	if c.WaitPolicy.Attempts == 0 {
		c.WaitPolicy = pipeline.WaitPolicy
	}
	return c
}

// Core is the single dependency-injection object the worker pool runs
// flows against.
type Core struct {
	Clock  clock.Clock
	IDGen  idgen.IDGen
	Locks  *lock.Service
	Freeze *freeze.Registry
	Jobs   store.JobStore

	Notifiers  notify.Registry
	Deployer   deploy.Client
	Undeployer undeploy.Client
	Config     appconfig.Loader

	Correlate *correlator.Correlator

	cfg Config
}

// New builds a Core from its collaborators.
func New(
	c clock.Clock,
	ids idgen.IDGen,
	locks *lock.Service,
	fr *freeze.Registry,
	jobs store.JobStore,
	notifiers notify.Registry,
	deployer deploy.Client,
	undeployer undeploy.Client,
	configLoader appconfig.Loader,
	cfg Config,
) *Core {
	return &Core{
		Clock:      c,
		IDGen:      ids,
		Locks:      locks,
		Freeze:     fr,
		Jobs:       jobs,
		Notifiers:  notifiers,
		Deployer:   deployer,
		Undeployer: undeployer,
		Config:     configLoader,
		Correlate:  correlator.New(jobs, c, ids),
		cfg:        cfg.withDefaults(),
	}
}

func (c *Core) appKey(owner, repo, ref string) string {
	return c.cfg.Env + "-" + owner + "-" + repo + "-" + ref
}
