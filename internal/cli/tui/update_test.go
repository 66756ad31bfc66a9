package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdate_JobStartedAddsActiveJobWithPhase(t *testing.T) {
	m := NewModel(4)

	m.Update(JobStartedMsg{JobID: "acme/widgets/main", Owner: "acme", Repo: "widgets", Ref: "main", HookType: "builder", HookName: "quay"})

	job, ok := m.ActiveJobs["acme/widgets/main"]
	require.True(t, ok)
	assert.Equal(t, "builder/quay", job.Phase)
	assert.Equal(t, IconBuild, job.PhaseIcon)
}

func TestUpdate_JobStartedTwiceUpdatesPhaseInPlace(t *testing.T) {
	m := NewModel(4)

	m.Update(JobStartedMsg{JobID: "acme/widgets/main", HookType: "builder", HookName: "quay"})
	m.Update(JobStartedMsg{JobID: "acme/widgets/main", HookType: "ci", HookName: "tests"})

	require.Len(t, m.ActiveJobs, 1)
	job := m.ActiveJobs["acme/widgets/main"]
	assert.Equal(t, "ci/tests", job.Phase)
	assert.Equal(t, IconValidate, job.PhaseIcon)
}

func TestUpdate_JobCompletedRemovesActiveJobAndIncrementsCounter(t *testing.T) {
	m := NewModel(4)
	m.Update(JobStartedMsg{JobID: "job-1"})

	m.Update(JobCompletedMsg{JobID: "job-1"})

	assert.Empty(t, m.ActiveJobs)
	assert.Equal(t, 1, m.CompletedJobs)
}

func TestUpdate_JobFailedRemovesActiveJobAndIncrementsCounter(t *testing.T) {
	m := NewModel(4)
	m.Update(JobStartedMsg{JobID: "job-1"})

	m.Update(JobFailedMsg{JobID: "job-1", Error: "deploy failed"})

	assert.Empty(t, m.ActiveJobs)
	assert.Equal(t, 1, m.FailedJobs)
}

func TestUpdate_LogMsgAppendsAndTrimsToLimit(t *testing.T) {
	m := NewModel(4)
	m.LogLimit = 2

	m.Update(LogMsg{Line: "first"})
	m.Update(LogMsg{Line: "second"})
	m.Update(LogMsg{Line: "third"})

	assert.Equal(t, []string{"second", "third"}, m.LogLines)
}

func TestUpdate_QKeyQuits(t *testing.T) {
	m := NewModel(4)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	assert.True(t, m.Quitting)
	assert.NotNil(t, cmd)
}

func TestUpdate_CtrlCQuits(t *testing.T) {
	m := NewModel(4)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.True(t, m.Quitting)
	assert.NotNil(t, cmd)
}

func TestHookPhaseIcon_UnknownHookTypeUsesWaitingIcon(t *testing.T) {
	assert.Equal(t, IconWaiting, hookPhaseIcon("scm-push"))
}
