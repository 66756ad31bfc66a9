package cli

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/choo-deploy/deployd/internal/ambientconfig"
	"github.com/choo-deploy/deployd/internal/cli/tui"
	"github.com/choo-deploy/deployd/internal/logging"
	"github.com/choo-deploy/deployd/internal/store"
)

// newWatchCmd runs the daemon the same way serve does, but attaches a
// terminal dashboard that tracks active jobs, registered in the core's
// notifier registry as the "tui" notifier. The dashboard only receives
// notifications for applications whose config lists an enabled
// notification of kind "tui".
func (a *App) newWatchCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the daemon with a live job dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ambientconfig.Load(configPath)
			if err != nil {
				return err
			}

			w, err := buildCore(cfg)
			if err != nil {
				return err
			}
			defer w.Store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if sqlStore, ok := w.Store.(*store.SQLite); ok {
				sqlStore.StartReaper(ctx, cfg.ReaperInterval)
			}

			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return runServe(ctx, w, cfg, cmd.InOrStdin())
			}

			model := tui.NewModel(cfg.Workers)
			program := tea.NewProgram(model)

			bridge := tui.NewBridge(program)
			w.Core.Notifiers["tui"] = bridge

			logWriter := tui.NewLogWriter(program)
			logging.Daemon.SetOutput(logWriter)

			errCh := make(chan error, 1)
			go func() {
				errCh <- runServe(ctx, w, cfg, cmd.InOrStdin())
				logWriter.Flush()
				bridge.SendDone()
			}()

			if _, err := program.Run(); err != nil {
				return err
			}
			return <-errCh
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the daemon's bootstrap config file")
	return cmd
}
