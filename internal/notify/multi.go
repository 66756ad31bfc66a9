package notify

import (
	"context"
	"sync"

	"github.com/choo-deploy/deployd/internal/appconfig"
)

// Multi fans out to several notifiers concurrently, returning the first
// error encountered but waiting for all to finish, grounded on
// internal/escalate.Multi.
type Multi struct {
	notifiers []Notifier
}

func NewMulti(notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

func (m *Multi) Kind() string { return "multi" }

func (m *Multi) Notify(ctx context.Context, payload Payload, notifyCtx map[string]any, level Level, notifications []appconfig.NotificationConfig, securityProfile string) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, n := range m.notifiers {
		n := n
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := n.Notify(ctx, payload, notifyCtx, level, notifications, securityProfile); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return firstErr
}

// FromRegistry resolves the notifiers for this call (via Registry.Resolve)
// and fans out with Multi. If no notifier resolves, it is a silent no-op
// — the core never fails a job because a notification had nowhere to go.
func FromRegistry(registry Registry, notifications []appconfig.NotificationConfig, level Level) Notifier {
	resolved := registry.Resolve(notifications, level)
	return NewMulti(resolved...)
}
