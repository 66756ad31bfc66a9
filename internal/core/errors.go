package core

import (
	"context"

	"github.com/choo-deploy/deployd/internal/apperrors"
	"github.com/choo-deploy/deployd/internal/appconfig"
	"github.com/choo-deploy/deployd/internal/domain"
	"github.com/choo-deploy/deployd/internal/notify"
)

// handleJobError implements the Error Router & Notifier hand-off (C11,
// §4.12): normalize the error, notify at FAILED level, append JOB_FAILED,
// and mark the job FAILED if its ID is known.
func (c *Core) handleJobError(ctx context.Context, jobErr error, cfg *appconfig.Evaluated, notifyCtx map[string]any, jobID string) {
	normalized := apperrors.Normalize(jobErr)

	notifier := notify.FromRegistry(c.Notifiers, cfg.Notifications, notify.LevelFailed)
	_ = notifier.Notify(ctx, notify.Payload{Message: jobErr.Error(), Details: normalized}, notifyCtx, notify.LevelFailed, cfg.Notifications, cfg.SecurityProfile)

	c.appendEvent(ctx, domain.EventJobFailed, jobID, normalized)

	if jobID != "" {
		_ = c.Jobs.UpdateState(ctx, jobID, domain.JobStateFailed)
	}
}
