package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vakya-ai/Anushandhan/internal/app"
)

type refreshMsg struct{}

type submitDoneMsg struct{ err error }

// Model is the interactive front end. It reads the session store and the
// orchestrator's progress snapshot on a short refresh tick and never mutates
// shared state except through their public operations.
type Model struct {
	store *app.Store
	orch  *app.Orchestrator
	prefs *app.SnapshotStore

	theme Theme

	width  int
	height int
	ready  bool

	transcript viewport.Model
	input      textinput.Model
	spin       spinner.Model

	status string
}

func New(store *app.Store, orch *app.Orchestrator, prefs *app.SnapshotStore, themeName string) *Model {
	ti := textinput.New()
	ti.Placeholder = "Enter a topic or GitHub URL, then press Enter"
	ti.CharLimit = 500
	ti.Focus()

	theme := NewTheme(ThemeName(themeName))
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return &Model{
		store:  store,
		orch:   orch,
		prefs:  prefs,
		theme:  theme,
		input:  ti,
		spin:   sp,
		status: "Ready",
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, refreshTick())
}

func refreshTick() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(_ time.Time) tea.Msg {
		return refreshMsg{}
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chatH := max(4, m.height-10)
		chatW := max(20, m.width-listWidth-8)
		if !m.ready {
			m.transcript = viewport.New(chatW, chatH)
			m.ready = true
		} else {
			m.transcript.Width = chatW
			m.transcript.Height = chatH
		}
		m.input.Width = max(10, m.width-6)
		m.renderTranscript()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m, m.submit()
		case "ctrl+n":
			m.store.AddSession("", "")
			m.status = "New chat"
			m.renderTranscript()
			return m, nil
		case "ctrl+d":
			if sess, ok := m.store.Selected(); ok {
				m.store.DeleteSession(sess.ID)
				m.status = "Chat deleted"
				m.renderTranscript()
			}
			return m, nil
		case "ctrl+p", "ctrl+k":
			m.cycleSelection(-1)
			return m, nil
		case "tab", "ctrl+j":
			m.cycleSelection(1)
			return m, nil
		case "ctrl+t":
			m.toggleTheme()
			return m, nil
		}

	case refreshMsg:
		m.renderTranscript()
		cmds = append(cmds, refreshTick())

	case submitDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		m.renderTranscript()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	m.input.Reset()
	m.status = "Submitting"

	input := app.GenerateInput{Topic: text}
	if app.IsValidGitHubURL(text) {
		input = app.GenerateInput{Topic: text, SourceType: app.SourceTypeGitHub, SourceURL: text}
	}
	return func() tea.Msg {
		return submitDoneMsg{err: m.orch.Submit(context.Background(), input)}
	}
}

func (m *Model) cycleSelection(delta int) {
	state := m.store.State()
	if len(state.Chats) == 0 {
		return
	}
	idx := 0
	for i, c := range state.Chats {
		if c.ID == state.SelectedChatID {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(state.Chats)) % len(state.Chats)
	m.store.SelectSession(state.Chats[idx].ID)
	m.renderTranscript()
}

func (m *Model) toggleTheme() {
	next := ThemeLight
	if m.theme.Name == ThemeLight {
		next = ThemeDark
	}
	m.theme = NewTheme(next)
	m.spin.Style = m.theme.Spinner
	if m.prefs != nil {
		_ = m.prefs.SaveTheme(string(next))
	}
	m.renderTranscript()
}

const listWidth = 28

func (m *Model) renderTranscript() {
	if !m.ready {
		return
	}
	sess, ok := m.store.Selected()
	if !ok {
		m.transcript.SetContent(m.theme.RoleSys.Render("No chats yet. Type a topic and press Enter."))
		return
	}
	var b strings.Builder
	for _, msg := range sess.Messages {
		b.WriteString(m.roleStyle(msg.Role).Render(roleLabel(msg.Role)))
		b.WriteString(" ")
		b.WriteString(msg.Text)
		if msg.PaperContent != "" {
			b.WriteString("\n\n")
			b.WriteString(msg.PaperContent)
		}
		b.WriteString("\n\n")
	}
	m.transcript.SetContent(b.String())
	m.transcript.GotoBottom()
}

func (m *Model) roleStyle(role string) lipgloss.Style {
	switch role {
	case app.RoleUser:
		return m.theme.RoleYou
	case app.RoleAssistant:
		return m.theme.RoleAI
	case app.RoleError:
		return m.theme.RoleErr
	default:
		return m.theme.RoleSys
	}
}

func roleLabel(role string) string {
	switch role {
	case app.RoleUser:
		return "You ▸"
	case app.RoleAssistant:
		return "Anushandhan ▸"
	case app.RoleError:
		return "Error ▸"
	default:
		return "System ▸"
	}
}

func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	state := m.store.State()
	var list strings.Builder
	list.WriteString(m.theme.Title.Render("Chats"))
	list.WriteString("\n")
	for _, c := range state.Chats {
		topic := c.Topic
		if topic == "" {
			topic = "New chat"
		}
		topic = truncate(topic, listWidth-4)
		marker := "  "
		if c.ID == state.SelectedChatID {
			marker = "▸ "
		}
		list.WriteString(marker + topic + "\n")
	}

	left := m.theme.Pane.Width(listWidth).Height(m.transcript.Height).Render(list.String())
	right := m.theme.PaneSel.Render(m.transcript.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	statusLine := m.statusLine()
	inputBox := m.theme.InputBox.Width(max(10, m.width-4)).Render(m.input.View())
	footer := m.theme.Footer.Render("enter send · ctrl+n new · ctrl+d delete · tab next chat · ctrl+t theme · esc quit")

	return lipgloss.JoinVertical(lipgloss.Left, body, statusLine, inputBox, footer)
}

func (m *Model) statusLine() string {
	p := m.orch.Progress()
	switch p.Phase {
	case app.PhaseSubmitting, app.PhasePolling:
		return m.spin.View() + " " + m.theme.Footer.Render(p.StepLabel+"…")
	case app.PhaseFailed:
		if p.Err != nil {
			return m.theme.RoleErr.Render(fmt.Sprintf("Failed: %v", p.Err))
		}
		return m.theme.RoleErr.Render("Failed")
	case app.PhaseResolved:
		return m.theme.Footer.Render("Paper ready")
	default:
		return m.theme.Footer.Render(m.status)
	}
}

// truncate caps s at width runes, never splitting a multibyte rune.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width]) + "…"
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
