package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// App represents the CLI application with all wired dependencies.
type App struct {
	// Root command
	rootCmd *cobra.Command

	// Runtime state
	configPath string
	verbose    bool
	cancel     context.CancelFunc
	shutdown   chan struct{}

	// Version information
	version string
	commit  string
	date    string
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		shutdown: make(chan struct{}),
	}
	app.setupRootCmd()
	app.addCommands()
	return app
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// SetVersion sets the version string for the version command.
func (a *App) SetVersion(version, commit, date string) {
	a.version = version
	a.commit = commit
	a.date = date
}

// setupRootCmd configures the root Cobra command.
func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "deployd",
		Short: "Continuous-deployment orchestrator",
		Long: `deployd correlates SCM, CI and container-build signals into
deploy jobs and fans requests out to deployer backends.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	a.rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "",
		"path to the daemon's bootstrap config file")
	a.rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"verbose output")
}

func (a *App) addCommands() {
	a.rootCmd.AddCommand(a.newServeCmd())
	a.rootCmd.AddCommand(a.newWatchCmd())
	a.rootCmd.AddCommand(a.newReplayCmd())
	a.rootCmd.AddCommand(a.newUndeployCmd())
	a.rootCmd.AddCommand(a.newVersionCmd())
}
