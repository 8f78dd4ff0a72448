package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	orchestration "github.com/voicedesk/voice-core/core"
)

type stateChangedMsg struct{ state orchestration.State }
type interimTranscriptMsg struct{ transcript string }
type entryAppendedMsg struct{ entry orchestration.Entry }
type droppedUtteranceMsg struct{ transcript string }
type navigationMsg struct{ destination string }

type styles struct {
	title     lipgloss.Style
	state     lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	notice    lipgloss.Style
	interim   lipgloss.Style
	help      lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		state:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("117")),
		user:      lipgloss.NewStyle().Foreground(lipgloss.Color("150")),
		assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("189")),
		notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		interim:   lipgloss.NewStyle().Faint(true).Italic(true),
		help:      lipgloss.NewStyle().Faint(true),
	}
}

type model struct {
	orchestrator *orchestration.Orchestrator

	width  int
	height int
	ready  bool

	state     orchestration.State
	recording bool
	interim   string
	notices   []string

	lines    []string
	viewport viewport.Model
	styles   styles
}

func newModel(orchestrator *orchestration.Orchestrator) model {
	return model{
		orchestrator: orchestrator,
		state:        orchestration.StateIdle,
		styles:       defaultStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		m.refreshViewport()
		return m, nil

	case stateChangedMsg:
		m.state = msg.state
		if msg.state != orchestration.StateListening {
			m.interim = ""
		}
		return m, nil

	case interimTranscriptMsg:
		m.interim = msg.transcript
		return m, nil

	case entryAppendedMsg:
		m.lines = append(m.lines, m.renderEntry(msg.entry))
		m.interim = ""
		m.refreshViewport()
		return m, nil

	case droppedUtteranceMsg:
		m.addNotice(fmt.Sprintf("dropped %q, still waiting for the last reply", msg.transcript))
		return m, nil

	case navigationMsg:
		m.addNotice("navigate to " + msg.destination)
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.orchestrator.Stop()
		return m, tea.Quit
	case "s":
		m.orchestrator.Stop()
	case "p":
		m.orchestrator.Pause()
	case "r":
		m.orchestrator.Resume()
	case " ":
		if m.recording {
			m.orchestrator.StopAudioRecording()
			m.recording = false
		} else {
			m.orchestrator.StartAudioRecording()
			m.recording = true
		}
	case "c":
		m.orchestrator.ClearHistory()
		m.lines = nil
		m.refreshViewport()
	case "e":
		m.exportHistory()
	}
	return m, nil
}

func (m *model) exportHistory() {
	serialized, err := m.orchestrator.ExportHistory()
	if err != nil {
		m.addNotice("export failed: " + err.Error())
		return
	}

	name := fmt.Sprintf("voicedesk-history-%s.json", time.Now().Format("20060102-150405"))
	if err := os.WriteFile(name, serialized, 0o644); err != nil {
		m.addNotice("export failed: " + err.Error())
		return
	}
	m.addNotice("history exported to " + name)
}

func (m *model) addNotice(notice string) {
	m.notices = append(m.notices, notice)
	if len(m.notices) > 3 {
		m.notices = m.notices[len(m.notices)-3:]
	}
}

func (m *model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(wordwrap.String(strings.Join(m.lines, "\n"), m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m model) renderEntry(entry orchestration.Entry) string {
	timestamp := entry.Timestamp.Format("15:04:05")
	switch entry.Role {
	case orchestration.RoleUser:
		return m.styles.user.Render(fmt.Sprintf("%s you: %s", timestamp, entry.Content))
	default:
		line := fmt.Sprintf("%s assistant: %s", timestamp, entry.Content)
		if entry.Action != "" {
			line += " [" + entry.Action + "]"
		}
		return m.styles.assistant.Render(line)
	}
}

func (m model) View() string {
	if !m.ready {
		return "starting..."
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render("voicedesk"))
	b.WriteString("  ")
	b.WriteString(m.styles.state.Render(string(m.state)))
	if m.recording {
		b.WriteString(m.styles.notice.Render("  ● rec"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.interim != "" {
		b.WriteString(m.styles.interim.Render("… " + m.interim))
	}
	b.WriteString("\n")

	for _, notice := range m.notices {
		b.WriteString(m.styles.notice.Render(notice))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.help.Render("space push-to-talk · p pause · r resume · s stop · c clear · e export · q quit"))
	return b.String()
}
