package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// JobState tracks the state of a single in-flight deploy job in the TUI.
type JobState struct {
	ID        string
	Owner     string
	Repo      string
	Ref       string
	Phase     string
	PhaseIcon string
}

// Model is the bubbletea model for the job-watch TUI.
type Model struct {
	// Configuration
	Workers int
	Styles  Styles

	// State
	ActiveJobs    map[string]*JobState
	CompletedJobs int
	FailedJobs    int
	StartTime     time.Time
	LogLines      []string
	LogLimit      int
	ShowLogs      bool
	Width         int
	Height        int

	// Control
	Quitting bool
	Done     bool
}

// NewModel creates a new TUI model; workers is the worker-pool size shown
// in the header and does not limit how many jobs are tracked.
func NewModel(workers int) *Model {
	return &Model{
		Workers:    workers,
		Styles:     DefaultStyles(),
		ActiveJobs: make(map[string]*JobState),
		StartTime:  time.Now(),
		LogLimit:   500,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
	)
}

// TickMsg is sent every second to update the timer
type TickMsg time.Time

// tickCmd returns a command that sends TickMsg every second
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// DoneMsg signals the TUI should exit
type DoneMsg struct{}

// QuitMsg signals the user requested quit (q or Ctrl+C)
type QuitMsg struct{}

// JobStartedMsg indicates a job received a hook signal and is being worked.
type JobStartedMsg struct {
	JobID              string
	Owner, Repo, Ref   string
	HookType, HookName string
}

// JobCompletedMsg indicates a job reached COMPLETE or NOOP.
type JobCompletedMsg struct {
	JobID string
}

// JobFailedMsg indicates a job reached FAILED.
type JobFailedMsg struct {
	JobID string
	Error string
}
