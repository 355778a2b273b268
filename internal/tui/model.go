// Package tui is the interactive terminal client of a council conversation.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/council/internal/orchestrator"
	"github.com/Iron-Ham/council/internal/roles"
	"github.com/Iron-Ham/council/internal/transcript"
	"github.com/Iron-Ham/council/internal/tui/styles"
	"github.com/Iron-Ham/council/internal/util"
)

// Client is the part of the orchestrator engine the terminal client uses.
type Client interface {
	Start(ctx context.Context) (string, []transcript.Event)
	HandleMessage(ctx context.Context, conversationID, text string) (orchestrator.TurnResult, error)
	AddMembers(ctx context.Context, conversationID string, roleIDs []string) ([]transcript.Event, error)
	Members(ctx context.Context, conversationID string) ([]string, error)
	Recommend(limit int) []roles.Role
	Registry() roles.Registry
}

var _ Client = (*orchestrator.Engine)(nil)

// Messages produced by client commands.
type (
	startedMsg struct {
		conversationID string
		events         []transcript.Event
	}
	turnMsg struct {
		result  orchestrator.TurnResult
		members []string
		err     error
	}
	membersMsg struct {
		events  []transcript.Event
		members []string
		err     error
	}
)

// Model is the bubbletea model of the chat client.
type Model struct {
	ctx    context.Context
	client Client

	conversationID string
	events         []transcript.Event
	members        []string
	showLanes      bool
	busy           bool
	notice         string
	err            error
	quitting       bool

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
	ready    bool
}

// NewModel creates a Model talking to client.
func NewModel(ctx context.Context, client Client) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask the council, or /help"
	ti.Prompt = "› "
	ti.CharLimit = 4000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.PrimaryColor)

	return Model{
		ctx:       ctx,
		client:    client,
		input:     ti,
		spinner:   sp,
		showLanes: true,
		viewport:  viewport.New(80, 20),
	}
}

// Init starts the conversation.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.startCmd())
}

func (m Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		id, events := m.client.Start(m.ctx)
		return startedMsg{conversationID: id, events: events}
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	id := m.conversationID
	return func() tea.Msg {
		res, err := m.client.HandleMessage(m.ctx, id, text)
		if err != nil {
			return turnMsg{err: err}
		}
		members, err := m.client.Members(m.ctx, id)
		return turnMsg{result: res, members: members, err: err}
	}
}

func (m Model) addCmd(ids []string) tea.Cmd {
	id := m.conversationID
	return func() tea.Msg {
		events, err := m.client.AddMembers(m.ctx, id, ids)
		if err != nil {
			return membersMsg{err: err}
		}
		members, err := m.client.Members(m.ctx, id)
		return membersMsg{events: events, members: members, err: err}
	}
}

// Update handles input and client results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if cmd := m.submit(); cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyCtrlU, tea.KeyCtrlD:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case startedMsg:
		m.conversationID = msg.conversationID
		m.events = append(m.events, msg.events...)
		m.refresh()

	case turnMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil {
			m.events = append(m.events, msg.result.Events...)
			m.members = msg.members
		}
		m.refresh()

	case membersMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil {
			m.events = append(m.events, msg.events...)
			m.members = msg.members
		}
		m.refresh()

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit handles the entered line: a slash command or a message.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.busy || m.conversationID == "" {
		return nil
	}
	m.input.SetValue("")
	m.notice = ""
	m.err = nil

	if strings.HasPrefix(text, "/") {
		return m.command(text)
	}
	m.busy = true
	m.refresh()
	return tea.Batch(m.sendCmd(text), m.spinner.Tick)
}

// command runs a slash command.
func (m *Model) command(line string) tea.Cmd {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "/quit", "/exit":
		m.quitting = true
		return tea.Quit
	case "/add":
		if len(fields) < 2 {
			m.notice = "usage: /add <role> [role...]"
			return nil
		}
		m.busy = true
		return tea.Batch(m.addCmd(fields[1:]), m.spinner.Tick)
	case "/lanes":
		m.showLanes = !m.showLanes
		m.refresh()
		if m.showLanes {
			m.notice = "showing role dialogues"
		} else {
			m.notice = "hiding role dialogues"
		}
		return nil
	case "/members":
		if len(m.members) == 0 {
			m.notice = "no members yet"
		} else {
			m.notice = "members: " + strings.Join(m.labels(m.members), ", ")
		}
		return nil
	case "/roles":
		reg := m.client.Registry()
		var parts []string
		for _, id := range reg.AllIDs() {
			if role, ok := reg.ByID(id); ok {
				parts = append(parts, fmt.Sprintf("%s (%s)", role.ID, role.Label()))
			}
		}
		m.notice = "roles: " + strings.Join(parts, ", ")
		return nil
	case "/recommend":
		var parts []string
		for _, role := range m.client.Recommend(0) {
			parts = append(parts, role.ID)
		}
		m.notice = "recommended: " + strings.Join(parts, ", ")
		return nil
	case "/help":
		m.notice = "/add <role>  /members  /roles  /recommend  /lanes  /quit"
		return nil
	default:
		m.notice = fmt.Sprintf("unknown command %s, try /help", fields[0])
		return nil
	}
}

func (m *Model) layout() {
	inputHeight := 3
	headerHeight := 2
	statusHeight := 1
	h := m.height - inputHeight - headerHeight - statusHeight
	if h < 3 {
		h = 3
	}
	m.viewport.Width = m.width
	m.viewport.Height = h
	m.input.Width = max(10, m.width-6)
}

// refresh re-renders the transcript and keeps the view at the bottom.
func (m *Model) refresh() {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	m.viewport.SetContent(renderTranscript(m.events, m.showLanes, m.label, width))
	m.viewport.GotoBottom()
}

func (m Model) label(author string) string {
	switch author {
	case transcript.AuthorUser:
		return "You"
	case transcript.AuthorOrchestrator:
		return "Orchestrator"
	}
	if role, ok := m.client.Registry().ByID(author); ok {
		return role.Label()
	}
	return author
}

func (m Model) labels(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = m.label(id)
	}
	return out
}

// View renders the client.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Starting council..."
	}

	header := styles.Header.Width(m.width).Render(
		util.TruncateANSI(fmt.Sprintf("council · %s", shortID(m.conversationID)), max(m.width, 10)))

	var status string
	switch {
	case m.err != nil:
		status = styles.ErrorMsg.Render(m.err.Error())
	case m.busy:
		status = m.spinner.View() + " consulting..."
	case m.notice != "":
		status = m.notice
	default:
		members := "none"
		if len(m.members) > 0 {
			members = strings.Join(m.labels(m.members), ", ")
		}
		status = fmt.Sprintf("members: %s  %s", members, styles.HelpKey.Render("/help"))
	}
	statusBar := styles.StatusBar.Width(m.width).Render(util.TruncateANSI(status, max(m.width-2, 10)))

	input := styles.InputBox.Width(max(m.width-2, 10)).Render(m.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), statusBar, input)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
