// Package notify implements the Notifier collaborator boundary (§6.4) and
// the C11 hand-off: a fire-and-forget notify(payload, ctx, level,
// notifications, security_profile) call. Concrete transports (chat, SCM
// status API) are out of scope (§1) — this package defines the interface,
// a registry replacing the source's dynamic dispatch-by-method-name
// (Design Notes §9), and a Terminal implementation good enough for the
// CLI and tests, grounded on the teacher's internal/escalate package
// (Escalator interface, Multi fan-out, FromConfig registry).
package notify

import (
	"context"

	"github.com/choo-deploy/deployd/internal/appconfig"
)

// Level mirrors §6.4's ordering: lower numbers are higher severity.
type Level int

const (
	LevelFailed     Level = 1
	LevelFailedWarn Level = 2
	LevelSuccess    Level = 3
	LevelStarted    Level = 4
	LevelPending    Level = 5
)

// Payload is the message body handed to a Notifier.
type Payload struct {
	Message string
	Details map[string]any
}

// Notifier is the outbound collaborator the core fires notifications
// through. Implementations must respect context cancellation and must
// not block the caller indefinitely — this is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, payload Payload, notifyCtx map[string]any, level Level, notifications []appconfig.NotificationConfig, securityProfile string) error
	Kind() string
}

// Registry replaces the source's notify_<name> dynamic dispatch with an
// explicit mapping, per Design Notes §9.
type Registry map[string]Notifier

// Resolve returns the registered notifier for every kind named in
// notifications with Enabled == true and a Level that is 0 or not below
// the event's level (lower levels are more severe, so an entry configured
// at LevelSuccess also fires for LevelFailed, but not for LevelPending),
// mirroring notification.py's enabled/level filter, but resolved through
// the explicit Registry instead of globals().get("notify_%s" % name).
func (r Registry) Resolve(notifications []appconfig.NotificationConfig, level Level) []Notifier {
	var out []Notifier
	for _, n := range notifications {
		if !n.Enabled {
			continue
		}
		if Level(n.Level) != 0 && level > Level(n.Level) {
			continue
		}
		if notifier, ok := r[n.Kind]; ok {
			out = append(out, notifier)
		}
	}
	return out
}
