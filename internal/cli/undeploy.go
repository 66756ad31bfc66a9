package cli

import (
	"github.com/choo-deploy/deployd/internal/ambientconfig"
	"github.com/spf13/cobra"
)

// newUndeployCmd drives Core.Undeploy directly for an operator tearing
// down one application without waiting for a tag-delete webhook.
func (a *App) newUndeployCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "undeploy <owner> <repo> <ref>",
		Short: "Freeze and undeploy one application",
		Args:  cobra.ExactArgs(3),
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

			return w.Core.Undeploy(cmd.Context(), args[0], args[1], args[2])
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the daemon's bootstrap config file")
	return cmd
}
