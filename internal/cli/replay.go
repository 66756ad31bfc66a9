package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/choo-deploy/deployd/internal/ambientconfig"
	"github.com/choo-deploy/deployd/internal/domain"
	"github.com/spf13/cobra"
)

// newReplayCmd feeds a single hook-signal JSON document (file or stdin
// with "-") through Core.HandleHook and exits, for local reproduction of
// a webhook delivery without standing up the daemon loop.
func (a *App) newReplayCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "replay <file|->",
		Short: "Replay a single hook signal through the job engine",
		Args:  cobra.ExactArgs(1),
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

			data, err := readSignalSource(args[0])
			if err != nil {
				return err
			}

			var sig domain.HookSignal
			if err := json.Unmarshal(data, &sig); err != nil {
				return fmt.Errorf("cli: parse hook signal: %w", err)
			}

			return w.Core.HandleHook(cmd.Context(), sig)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the daemon's bootstrap config file")
	return cmd
}

func readSignalSource(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("cli: read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cli: read %s: %w", path, err)
	}
	return data, nil
}
