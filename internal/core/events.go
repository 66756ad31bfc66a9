package core

import (
	"context"

	"github.com/choo-deploy/deployd/internal/domain"
)

// appendEvent stamps and appends one event record.
func (c *Core) appendEvent(ctx context.Context, typ domain.EventType, jobID string, details map[string]any) {
	evt := domain.NewEvent(typ, jobID).WithDetails(details)
	evt.ID = c.IDGen.NewEventID()
	evt.Date = c.Clock.Now()
	// The append error is discarded: appendEvent is used from cleanup and
	// notification paths too, where failing loudly would mask the real
	// outcome, so a failed append is neither returned, logged nor routed
	// to the error handler.
	_ = c.Jobs.AppendEvent(ctx, &evt)
}
