package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/choo-deploy/deployd/internal/ambientconfig"
	"github.com/choo-deploy/deployd/internal/domain"
	"github.com/choo-deploy/deployd/internal/logging"
	"github.com/choo-deploy/deployd/internal/pipeline"
	"github.com/choo-deploy/deployd/internal/store"
	"github.com/spf13/cobra"
)

// newServeCmd runs the daemon: it reads newline-delimited hook-signal
// JSON from stdin (the inbound HTTP surface is explicitly out of scope)
// and feeds each one through Core.HandleHook, fanning out across a
// bounded worker pool the way the teacher's job_manager dispatches
// units across its worker pool rather than serially.
func (a *App) newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the deploy-job daemon, reading hook signals from stdin",
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

			return runServe(ctx, w, cfg, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the daemon's bootstrap config file")
	return cmd
}

func runServe(ctx context.Context, w *wired, cfg *ambientconfig.Config, in io.Reader) error {
	pool := pipeline.NewPool(cfg.Workers)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return pool.Wait()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var sig domain.HookSignal
		if err := json.Unmarshal(line, &sig); err != nil {
			logging.Daemon.Printf("skipping malformed hook signal: %v", err)
			continue
		}

		pool.Submit(ctx, func(ctx context.Context) error {
			if err := w.Core.HandleHook(ctx, sig); err != nil {
				logging.Daemon.Printf("handle_hook %s/%s/%s: %v", sig.Owner, sig.Repo, sig.Ref, err)
			}
			return nil
		})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("cli: read hook signals: %w", err)
	}

	return pool.Wait()
}
