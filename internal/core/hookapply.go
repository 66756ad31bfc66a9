package core

import (
	"context"

	"github.com/choo-deploy/deployd/internal/appconfig"
	"github.com/choo-deploy/deployd/internal/domain"
	"github.com/choo-deploy/deployd/internal/notify"
)

// applyHook implements Hook Application (§4.6): after correlation and
// before readiness evaluation, apply the incoming signal's status to the
// job's hook matrix, possibly short-circuiting to NOOP. Returns done=true
// when the caller should release the lock and return without evaluating
// readiness (NOOP or an ignored hook).
func (c *Core) applyHook(ctx context.Context, job *domain.Job, cfg *appconfig.Evaluated, sig domain.HookSignal, notifyCtx map[string]any) (done bool, err error) {
	var noop bool

	if sig.HookType == domain.HookTypeSCMCreate {
		if ferr := c.Freeze.Set(ctx, c.cfg.Env, sig.Owner, sig.Repo, sig.Ref, false); ferr != nil {
			return false, ferr
		}
		c.appendEvent(ctx, domain.EventSetupApplicationComplete, job.ID, map[string]any{
			"owner": sig.Owner, "repo": sig.Repo, "ref": sig.Ref,
		})
		noop = true
	} else {
		frozen, ferr := c.Freeze.IsFrozen(ctx, c.cfg.Env, sig.Owner, sig.Repo, sig.Ref)
		if ferr != nil {
			return false, ferr
		}
		noop = frozen
	}

	if noop || !cfg.Enabled || !cfg.HasEnabledBuilderHook() || len(cfg.EnabledDeployers()) == 0 {
		job.State = domain.JobStateNoop
		if err := c.Jobs.UpdateState(ctx, job.ID, domain.JobStateNoop); err != nil {
			return false, err
		}
		c.appendEvent(ctx, domain.EventJobNoop, job.ID, nil)
		c.notifySuccess(ctx, cfg, notifyCtx, "job resolved to no-op")
		return true, nil
	}

	if _, ok := job.Hooks.Get(sig.HookType, sig.HookName); !ok {
		c.appendEvent(ctx, domain.EventHookIgnored, job.ID, map[string]any{
			"hook_type": string(sig.HookType), "hook_name": sig.HookName,
		})
		return true, nil
	}

	job.State = domain.JobStateScheduled
	job.Hooks.Set(sig.HookType, sig.HookName, sig.HookStatus)
	job.ForceDeploy = sig.ForceDeploy

	if sig.HookType == domain.HookTypeBuilder && sig.HookStatus == domain.HookStatusSuccess {
		if image := extractImage(sig.HookName, sig.HookResult); image != "" {
			applyImageToDeployers(cfg, image)
		}
	}

	job.Config = cfg.Snapshot()
	if err := c.Jobs.UpsertJob(ctx, job); err != nil {
		return false, err
	}
	return false, nil
}

// extractImage implements the deployer-specific image URL extraction
// from a builder hook's result (§4.6 step 6): the quay builder reports
// docker_url/docker_tags and is dispatched on hook name, not any field
// inside the result, since quay's payload carries no type tag of its
// own; it strips to the first tag if tags are present, otherwise uses
// the bare docker_url. Every other builder reports hook_result.image
// directly.
func extractImage(hookName string, result map[string]any) string {
	if result == nil {
		return ""
	}
	if hookName == "quay" {
		dockerURL, _ := result["docker_url"].(string)
		tags, _ := result["docker_tags"].([]any)
		if len(tags) > 0 {
			if tag, ok := tags[0].(string); ok {
				return dockerURL + ":" + tag
			}
		}
		return dockerURL
	}
	image, _ := result["image"].(string)
	return image
}

func applyImageToDeployers(cfg *appconfig.Evaluated, image string) {
	for name, d := range cfg.Deployers {
		if d.Templates == nil {
			d.Templates = map[string]any{}
		}
		app, _ := d.Templates["app"].(map[string]any)
		if app == nil {
			app = map[string]any{}
		}
		args, _ := app["args"].(map[string]any)
		if args == nil {
			args = map[string]any{}
		}
		args["image"] = image
		app["args"] = args
		d.Templates["app"] = app
		cfg.Deployers[name] = d
	}
}

func (c *Core) notifySuccess(ctx context.Context, cfg *appconfig.Evaluated, notifyCtx map[string]any, message string) {
	notifier := notify.FromRegistry(c.Notifiers, cfg.Notifications, notify.LevelSuccess)
	_ = notifier.Notify(ctx, notify.Payload{Message: message}, notifyCtx, notify.LevelSuccess, cfg.Notifications, cfg.SecurityProfile)
}
