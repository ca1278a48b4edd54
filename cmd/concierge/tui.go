package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tailored-agentic-units/concierge/catalog"
	"github.com/tailored-agentic-units/concierge/concierge"
	"github.com/tailored-agentic-units/concierge/observability"
	"github.com/tailored-agentic-units/concierge/realtime"
	"github.com/tailored-agentic-units/concierge/session"
)

const refreshInterval = 200 * time.Millisecond

type startedMsg struct{ err error }

type sentMsg struct{ err error }

type tickMsg time.Time

// noticeObserver keeps the latest non-fatal server error so the footer can
// show it. Fatal errors reach the footer through Concierge.Err.
type noticeObserver struct {
	mu   sync.Mutex
	last string
}

func (o *noticeObserver) OnEvent(ctx context.Context, event observability.Event) {
	if event.Type != realtime.EventServerError {
		return
	}
	msg, _ := event.Data["message"].(string)
	if msg == "" {
		msg, _ = event.Data["error"].(string)
	}
	if msg == "" {
		msg = "server error"
	}
	o.mu.Lock()
	o.last = msg
	o.mu.Unlock()
}

func (o *noticeObserver) Last() string {
	if o == nil {
		return ""
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

type chatTheme struct {
	header      lipgloss.Style
	panel       lipgloss.Style
	user        lipgloss.Style
	agent       lipgloss.Style
	status      lipgloss.Style
	errorStatus lipgloss.Style
	help        lipgloss.Style
}

func newChatTheme() chatTheme {
	accent := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	pink := lipgloss.Color("#ff71ce")
	muted := lipgloss.Color("#9ca3d8")

	return chatTheme{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		user:        lipgloss.NewStyle().Foreground(mint).Bold(true),
		agent:       lipgloss.NewStyle().Foreground(accent).Bold(true),
		status:      lipgloss.NewStyle().Foreground(accent),
		errorStatus: lipgloss.NewStyle().Foreground(pink).Bold(true),
		help:        lipgloss.NewStyle().Foreground(muted),
	}
}

type chatModel struct {
	ctx       context.Context
	c         *concierge.Concierge
	payload   catalog.Payload
	agentName string

	input      textinput.Model
	transcript viewport.Model
	spinner    spinner.Model
	theme      chatTheme
	notices    *noticeObserver

	connecting bool
	sendErr    error
	rendered   int
	width      int
	height     int
}

func newChatModel(ctx context.Context, c *concierge.Concierge, payload catalog.Payload, agentName string) chatModel {
	input := textinput.New()
	input.Prompt = "❯ "
	input.Placeholder = "Ask about the menu…"
	input.CharLimit = 2000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return chatModel{
		ctx:        ctx,
		c:          c,
		payload:    payload,
		agentName:  agentName,
		input:      input,
		transcript: viewport.New(0, 0),
		spinner:    sp,
		theme:      newChatTheme(),
		connecting: true,
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.startCmd(), tickEvery(refreshInterval))
}

func (m chatModel) startCmd() tea.Cmd {
	ctx, c, payload := m.ctx, m.c, m.payload
	return func() tea.Msg {
		return startedMsg{err: c.StartSession(ctx, payload)}
	}
}

func (m chatModel) sendCmd(text string) tea.Cmd {
	ctx, c := m.ctx, m.c
	return func() tea.Msg {
		return sentMsg{err: c.SendText(ctx, text)}
	}
}

func tickEvery(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.rendered = -1
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.c.Shutdown()
			return m, tea.Quit
		case "ctrl+t":
			if h := m.c.Handle(); h != nil {
				m.c.SetMuted(!h.Muted())
			}
			return m, nil
		case "ctrl+r":
			if m.connecting {
				return m, nil
			}
			m.connecting = true
			m.sendErr = nil
			return m, m.startCmd()
		case "enter":
			text := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(text) == "" {
				return m, nil
			}
			return m, m.sendCmd(text)
		}
	case startedMsg:
		m.connecting = false
	case sentMsg:
		m.sendErr = msg.err
	case tickMsg:
		cmds = append(cmds, tickEvery(refreshInterval))
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	m.refresh()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.transcript, cmd = m.transcript.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// refresh re-renders the transcript when entries were added or the
// window changed.
func (m *chatModel) refresh() {
	tr := m.c.Transcript()
	if tr.Len() == m.rendered {
		return
	}
	entries := tr.Entries()
	m.rendered = len(entries)
	m.transcript.SetContent(renderTranscript(entries, m.agentName, m.theme, m.transcript.Width))
	m.transcript.GotoBottom()
}

func (m *chatModel) resize() {
	width := max(20, m.width-4)
	m.transcript.Width = width - 2
	m.transcript.Height = max(3, m.height-9)
	m.input.Width = max(10, width-6)
}

func (m chatModel) View() string {
	width := max(20, m.width-4)

	header := m.theme.header.Render(fmt.Sprintf("%s · %d menu items", m.agentName, m.payload.Len()))
	body := m.theme.panel.Width(width).Render(m.transcript.View())
	input := m.theme.panel.Width(width).Render(m.input.View())

	status := statusLine(m.c.State(), m.c.Err(), m.sendErr, m.muted())
	statusStyle := m.theme.status
	if m.c.Err() != nil || m.sendErr != nil {
		statusStyle = m.theme.errorStatus
	}
	if m.connecting {
		status = m.spinner.View() + " " + status
	}
	if notice := m.notices.Last(); notice != "" {
		status += " · server: " + notice
	}
	footer := statusStyle.Render(status) + "\n" +
		m.theme.help.Render("enter send · ctrl+t mute · ctrl+r restart · esc quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, body, input, footer)
}

func (m chatModel) muted() bool {
	h := m.c.Handle()
	return h != nil && h.Muted()
}

// statusLine summarizes the session for the footer.
func statusLine(state concierge.State, sessionErr, sendErr error, muted bool) string {
	var b strings.Builder
	b.WriteString(state.String())
	if state == concierge.StateActive {
		if muted {
			b.WriteString(" · muted")
		} else {
			b.WriteString(" · listening")
		}
	}
	if sessionErr != nil {
		b.WriteString(" · ")
		b.WriteString(sessionErr.Error())
	} else if sendErr != nil {
		b.WriteString(" · send failed: ")
		b.WriteString(sendErr.Error())
	}
	return b.String()
}

// renderTranscript lays out entries oldest first with a speaker label per
// entry.
func renderTranscript(entries []session.Entry, agentName string, theme chatTheme, width int) string {
	if len(entries) == 0 {
		return theme.help.Render("No messages yet. Type a question, or just speak.")
	}

	wrap := lipgloss.NewStyle()
	if width > 0 {
		wrap = wrap.Width(width)
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := theme.user.Render("You")
		if e.Role == session.RoleAgent {
			label = theme.agent.Render(agentName)
		}
		fmt.Fprintf(&b, "%s %s\n", label, theme.help.Render(e.At.Format("15:04")))
		b.WriteString(wrap.Render(e.Text))
	}
	return b.String()
}
