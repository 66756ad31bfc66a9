package core

import (
	"context"
	"fmt"

	"github.com/choo-deploy/deployd/internal/apperrors"
	"github.com/choo-deploy/deployd/internal/appconfig"
	"github.com/choo-deploy/deployd/internal/deploy"
	"github.com/choo-deploy/deployd/internal/domain"
	"github.com/choo-deploy/deployd/internal/notify"
	"github.com/choo-deploy/deployd/internal/pipeline"
	"github.com/choo-deploy/deployd/internal/readiness"
	"github.com/choo-deploy/deployd/internal/undeploy"
)

// HandleHook implements the top-level handle_hook flow (§4.10).
func (c *Core) HandleHook(ctx context.Context, sig domain.HookSignal) error {
	notifyCtx := map[string]any{
		"owner": sig.Owner, "repo": sig.Repo, "ref": sig.Ref,
		"hook_type": string(sig.HookType), "hook_name": sig.HookName,
	}

	cfg, err := c.Config.LoadConfig(ctx, c.cfg.Env, sig.Owner, sig.Repo, sig.Ref, nil)
	if err != nil {
		c.handleJobError(ctx, err, appconfig.Default(), notifyCtx, "")
		return err
	}

	startedNotifier := notify.FromRegistry(c.Notifiers, cfg.Notifications, notify.LevelStarted)
	_ = startedNotifier.Notify(ctx, notify.Payload{
		Message: fmt.Sprintf("Received webhook %s/%s with status %s", sig.HookType, sig.HookName, sig.HookStatus),
	}, notifyCtx, notify.LevelStarted, cfg.Notifications, cfg.SecurityProfile)

	c.appendEvent(ctx, domain.EventCallbackHook, "", map[string]any{
		"owner": sig.Owner, "repo": sig.Repo, "ref": sig.Ref,
		"hook_type": string(sig.HookType), "hook_name": sig.HookName, "hook_status": string(sig.HookStatus),
	})

	err = c.runLockedHookPipeline(ctx, cfg, sig, notifyCtx)
	if err != nil {
		// The locked pipeline already routed the error through
		// handleJobError before returning; the caller only needs the
		// task-identifier-style signal that something failed.
		return err
	}
	return nil
}

func (c *Core) runLockedHookPipeline(ctx context.Context, cfg *appconfig.Evaluated, sig domain.HookSignal, notifyCtx map[string]any) error {
	appKey := c.appKey(sig.Owner, sig.Repo, sig.Ref)

	l, err := c.Locks.Acquire(ctx, appKey)
	if err != nil {
		c.handleJobError(ctx, err, cfg, notifyCtx, "")
		return err
	}
	defer c.Locks.Release(ctx, l)

	job, err := c.Correlate.Correlate(ctx, cfg, sig.Owner, sig.Repo, sig.Ref, sig.Commit, sig.ForceDeploy)
	if err != nil {
		c.handleJobError(ctx, err, cfg, notifyCtx, "")
		return err
	}
	c.appendEvent(ctx, domain.EventAcquiredLock, job.ID, map[string]any{"app_key": appKey})

	if sig.Commit != "" && job.Git.Commit != sig.Commit {
		c.appendEvent(ctx, domain.EventCommitIgnored, job.ID, map[string]any{"commit": sig.Commit})
		return nil
	}

	done, err := c.applyHook(ctx, job, cfg, sig, notifyCtx)
	if err != nil {
		c.handleJobError(ctx, err, cfg, notifyCtx, job.ID)
		return err
	}
	if done {
		return nil
	}

	res := readiness.Evaluate(job)
	if len(res.Failed) > 0 {
		err := apperrors.HooksFailedError(res.Failed)
		c.handleJobError(ctx, err, cfg, notifyCtx, job.ID)
		return err
	}
	if len(res.Pending) > 0 {
		c.appendEvent(ctx, domain.EventPendingHook, job.ID, map[string]any{"pending": res.Pending})
		return nil
	}

	return c.fanOutDeploy(ctx, job, cfg, notifyCtx)
}

func (c *Core) fanOutDeploy(ctx context.Context, job *domain.Job, cfg *appconfig.Evaluated, notifyCtx map[string]any) error {
	metaInfo := map[string]any{
		"owner": job.Git.Owner, "repo": job.Git.Repo, "ref": job.Git.Ref,
		"commit": job.Git.Commit, "job_id": job.ID,
	}
	deployers := cfg.EnabledDeployers()

	outcomes, err := deploy.FanOut(ctx, c.Deployer, deployers, metaInfo, cfg.SecurityProfile, cfg.Notifications)
	if err != nil {
		c.handleJobError(ctx, err, cfg, notifyCtx, job.ID)
		return err
	}

	for _, o := range outcomes {
		c.appendEvent(ctx, domain.EventDeployRequested, job.ID, map[string]any{
			"deployer": o.Deployer, "status_code": o.StatusCode,
		})
	}

	successNotifier := notify.FromRegistry(c.Notifiers, cfg.Notifications, notify.LevelSuccess)
	_ = successNotifier.Notify(ctx, notify.Payload{Message: "deploy requested"}, notifyCtx, notify.LevelSuccess, cfg.Notifications, cfg.SecurityProfile)

	if err := c.Jobs.UpdateState(ctx, job.ID, domain.JobStateComplete); err != nil {
		c.handleJobError(ctx, err, cfg, notifyCtx, job.ID)
		return err
	}
	c.appendEvent(ctx, domain.EventJobComplete, job.ID, nil)
	return nil
}

// Undeploy implements the top-level undeploy flow (§4.11).
func (c *Core) Undeploy(ctx context.Context, owner, repo, ref string) error {
	notifyCtx := map[string]any{"owner": owner, "repo": repo, "ref": ref}

	cfg, err := c.Config.LoadConfig(ctx, c.cfg.Env, owner, repo, ref, nil)
	if err != nil {
		c.handleJobError(ctx, err, appconfig.Default(), notifyCtx, "")
		return err
	}

	c.appendEvent(ctx, domain.EventUndeployHook, "", map[string]any{"owner": owner, "repo": repo, "ref": ref})

	startedNotifier := notify.FromRegistry(c.Notifiers, cfg.Notifications, notify.LevelStarted)
	_ = startedNotifier.Notify(ctx, notify.Payload{
		Message: fmt.Sprintf("Received undeploy request for %s/%s/%s", owner, repo, ref),
	}, notifyCtx, notify.LevelStarted, cfg.Notifications, cfg.SecurityProfile)

	appKey := c.appKey(owner, repo, ref)
	l, err := c.Locks.Acquire(ctx, appKey)
	if err != nil {
		c.handleJobError(ctx, err, cfg, notifyCtx, "")
		return err
	}
	defer c.Locks.Release(ctx, l)

	// Freeze is set true and never explicitly unfrozen by this flow — the
	// source has the same asymmetry, and per the Design Notes' open
	// question, that behavior is preserved literally rather than guessed
	// at: only a subsequent scm-create hook unfreezes (see applyHook).
	if err := c.Freeze.Set(ctx, c.cfg.Env, owner, repo, ref, true); err != nil {
		c.handleJobError(ctx, err, cfg, notifyCtx, "")
		return err
	}

	deployers := cfg.EnabledDeployers()
	outcomes := undeploy.FanOut(ctx, c.Undeployer, deployers, owner, repo, ref)

	// The fan-out above already joined every branch synchronously; this
	// poll formalizes the async_wait contract (§4.9) for a future
	// backend where fan-out genuinely runs out-of-process.
	_ = pipeline.Wait(ctx, c.cfg.WaitPolicy, func(ctx context.Context) (bool, error) {
		return true, nil
	})

	c.appendEvent(ctx, domain.EventUndeployRequested, "", map[string]any{"outcomes": outcomeSummaries(outcomes)})
	return nil
}

func outcomeSummaries(outcomes []undeploy.Outcome) []map[string]any {
	out := make([]map[string]any, len(outcomes))
	for i, o := range outcomes {
		entry := map[string]any{"deployer": o.Deployer, "status_code": o.StatusCode}
		if o.Err != nil {
			entry["error"] = o.Err.Error()
		}
		out[i] = entry
	}
	return out
}
