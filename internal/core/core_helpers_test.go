package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/choo-deploy/deployd/internal/appconfig"
	"github.com/choo-deploy/deployd/internal/clock"
	"github.com/choo-deploy/deployd/internal/deploy"
	"github.com/choo-deploy/deployd/internal/freeze"
	"github.com/choo-deploy/deployd/internal/kv"
	"github.com/choo-deploy/deployd/internal/lock"
	"github.com/choo-deploy/deployd/internal/notify"
	"github.com/choo-deploy/deployd/internal/store"
)

type sequentialIDs struct{ n int }

func (s *sequentialIDs) NewJobID() string   { s.n++; return fmt.Sprintf("job-%d", s.n) }
func (s *sequentialIDs) NewEventID() string { s.n++; return fmt.Sprintf("evt-%d", s.n) }

// fakeLoader returns a fixed, mutable config regardless of the
// (env, owner, repo, ref) it is asked about, or a preset error.
type fakeLoader struct {
	cfg *appconfig.Evaluated
	err error
}

func (f *fakeLoader) LoadConfig(ctx context.Context, env, owner, repo, ref string, defaults map[string]any) (*appconfig.Evaluated, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cfg, nil
}

// fakeDeployClient always reports the same status for every deployer
// unless an override is recorded by name.
type fakeDeployClient struct {
	mu        sync.Mutex
	status    int
	overrides map[string]int
	calls     []string
}

func newFakeDeployClient(status int) *fakeDeployClient {
	return &fakeDeployClient{status: status, overrides: map[string]int{}}
}

func (f *fakeDeployClient) CreateApp(ctx context.Context, d appconfig.DeployerConfig, body map[string]any) (*deploy.Outcome, error) {
	f.mu.Lock()
	f.calls = append(f.calls, d.Name)
	status := f.status
	if s, ok := f.overrides[d.Name]; ok {
		status = s
	}
	f.mu.Unlock()
	return &deploy.Outcome{Deployer: d.Name, StatusCode: status}, nil
}

type fakeUndeployClient struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeUndeployClient) DeleteApp(ctx context.Context, d appconfig.DeployerConfig, owner, repo, ref string) (int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, d.Name)
	f.mu.Unlock()
	return 200, nil
}

// recordingNotifier captures every Notify call for assertion, keyed by
// the notify.Level it fired at.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []recordedNotification
}

type recordedNotification struct {
	Level   notify.Level
	Message string
}

func (r *recordingNotifier) Kind() string { return "recording" }

func (r *recordingNotifier) Notify(ctx context.Context, payload notify.Payload, notifyCtx map[string]any, level notify.Level, notifications []appconfig.NotificationConfig, securityProfile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedNotification{Level: level, Message: payload.Message})
	return nil
}

func (r *recordingNotifier) levels() []notify.Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Level, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Level
	}
	return out
}

// newTestCore builds a Core wired entirely over in-memory fakes, for
// tests that exercise the top-level flows end-to-end.
func newTestCore(cfg *appconfig.Evaluated, deployStatus int) (*Core, *store.Memory, *recordingNotifier) {
	c := clock.Real{}
	ids := &sequentialIDs{}
	backing := kv.NewMemory(nil)
	locks := lock.New(backing, c, ids, lock.Config{Delay: 0})
	fr := freeze.New(backing, freeze.Config{})
	jobs := store.NewMemory(c, 0)
	notifier := &recordingNotifier{}
	notifiers := notify.Registry{"recording": notifier}

	configuredNotifications := []appconfig.NotificationConfig{{Kind: "recording", Enabled: true}}
	cfg.Notifications = configuredNotifications

	loader := &fakeLoader{cfg: cfg}
	deployClient := newFakeDeployClient(deployStatus)
	undeployClient := &fakeUndeployClient{}

	core := New(c, ids, locks, fr, jobs, notifiers, deployClient, undeployClient, loader, Config{})
	return core, jobs, notifier
}
