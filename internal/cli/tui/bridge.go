package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/choo-deploy/deployd/internal/appconfig"
	"github.com/choo-deploy/deployd/internal/notify"
)

// Bridge adapts the core's notify.Notifier hand-off into bubbletea
// messages, the way the teacher's event-bus bridge turned unit/task
// events into tea.Msg values. Here the notification levels the core
// already emits at job start, success and failure stand in for that bus.
type Bridge struct {
	program *tea.Program
}

// NewBridge creates a new bridge for the given program.
func NewBridge(program *tea.Program) *Bridge {
	return &Bridge{program: program}
}

// Kind implements notify.Notifier.
func (b *Bridge) Kind() string { return "tui" }

// Notify implements notify.Notifier, translating one core notification
// into the TUI's active-job tracking state.
func (b *Bridge) Notify(ctx context.Context, payload notify.Payload, notifyCtx map[string]any, level notify.Level, _ []appconfig.NotificationConfig, _ string) error {
	owner, _ := notifyCtx["owner"].(string)
	repo, _ := notifyCtx["repo"].(string)
	ref, _ := notifyCtx["ref"].(string)
	jobID := owner + "/" + repo + "/" + ref

	var msg tea.Msg
	switch level {
	case notify.LevelStarted:
		hookType, _ := notifyCtx["hook_type"].(string)
		hookName, _ := notifyCtx["hook_name"].(string)
		msg = JobStartedMsg{JobID: jobID, Owner: owner, Repo: repo, Ref: ref, HookType: hookType, HookName: hookName}
	case notify.LevelSuccess:
		msg = JobCompletedMsg{JobID: jobID}
	case notify.LevelFailed, notify.LevelFailedWarn:
		msg = JobFailedMsg{JobID: jobID, Error: payload.Message}
	default:
		return nil
	}

	b.program.Send(msg)
	return nil
}

// SendDone sends a DoneMsg to the program.
func (b *Bridge) SendDone() {
	b.program.Send(DoneMsg{})
}

// SendQuit sends a QuitMsg to the program.
func (b *Bridge) SendQuit() {
	b.program.Send(QuitMsg{})
}
