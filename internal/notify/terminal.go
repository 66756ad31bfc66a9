package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/choo-deploy/deployd/internal/appconfig"
)

// levelEmoji mirrors the escalate package's severity-to-emoji map.
var levelEmoji = map[Level]string{
	LevelFailed:     "🔴",
	LevelFailedWarn: "🟠",
	LevelSuccess:    "🟢",
	LevelStarted:    "🔵",
	LevelPending:    "⚪",
}

// Terminal writes notifications to an io.Writer (stderr by default)
// under a mutex, grounded on internal/escalate.Terminal.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminal() *Terminal {
	return &Terminal{w: os.Stderr}
}

func NewTerminalWriter(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Kind() string { return "terminal" }

func (t *Terminal) Notify(ctx context.Context, payload Payload, notifyCtx map[string]any, level Level, _ []appconfig.NotificationConfig, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	emoji := levelEmoji[level]
	fmt.Fprintf(t.w, "%s %s\n", emoji, payload.Message)
	return nil
}
