package tui

import tea "github.com/charmbracelet/bubbletea"

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Quitting = true
			return m, tea.Quit
		}

	case TickMsg:
		// Continue ticking for timer updates
		return m, tickCmd()

	case DoneMsg:
		m.Done = true
		return m, tea.Quit

	case QuitMsg:
		m.Quitting = true
		return m, tea.Quit

	case JobStartedMsg:
		job, ok := m.ActiveJobs[msg.JobID]
		if !ok {
			job = &JobState{ID: msg.JobID, Owner: msg.Owner, Repo: msg.Repo, Ref: msg.Ref}
			m.ActiveJobs[msg.JobID] = job
		}
		job.Phase = hookPhaseText(msg.HookType, msg.HookName)
		job.PhaseIcon = hookPhaseIcon(msg.HookType)

	case JobCompletedMsg:
		delete(m.ActiveJobs, msg.JobID)
		m.CompletedJobs++

	case JobFailedMsg:
		delete(m.ActiveJobs, msg.JobID)
		m.FailedJobs++

	case LogMsg:
		m.LogLines = append(m.LogLines, msg.Line)
		if m.LogLimit > 0 && len(m.LogLines) > m.LogLimit {
			m.LogLines = m.LogLines[len(m.LogLines)-m.LogLimit:]
		}
	}

	return m, nil
}

func hookPhaseText(hookType, hookName string) string {
	if hookName == "" {
		return hookType
	}
	return hookType + "/" + hookName
}

func hookPhaseIcon(hookType string) string {
	switch hookType {
	case "ci":
		return IconValidate
	case "builder":
		return IconBuild
	default:
		return IconWaiting
	}
}
