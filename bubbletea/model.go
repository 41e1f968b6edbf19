package bubbletea

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jlisowski/canary"
	"github.com/jlisowski/canary/markdown"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

// ExitSentinel typed as a user message ends the session.
const ExitSentinel = "exit"

const maxPreviewLen = 60

// entryKind discriminates transcript entries for re-rendering on resize.
type entryKind int

const (
	entryUser entryKind = iota
	entryAssistant
	entryToolCall
	entryToolResult
	entryError
)

// entry is one transcript item kept in raw form so it can be re-rendered
// at any width.
type entry struct {
	kind     entryKind
	text     string
	toolName string
	isError  bool
}

// AgentEventMsg carries one agent progress event into Update.
type AgentEventMsg struct {
	Event canary.Event
}

// AgentDoneMsg signals that the in-flight turn finished.
type AgentDoneMsg struct {
	Err error
}

// Model is the Bubble Tea model for the canary TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable transcript area. Exported for test access.
	Viewport viewport.Model

	run     AgentFunc
	session *canary.Session
	theme   canary.Theme
	styles  Styles
	config  Config
	spin    spinner.Model

	entries []entry

	running bool
	cancel  context.CancelFunc
	eventCh chan canary.Event
	doneCh  chan error
	err     error
	width   int
	height  int
	ready   bool
}

// New creates a new TUI Model with the given agent function, session, theme,
// and config.
func New(run AgentFunc, session *canary.Session, theme canary.Theme, config Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about your builds... (\"exit\" to quit)"
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		Input:   ti,
		run:     run,
		session: session,
		theme:   theme,
		styles:  NewStyles(theme),
		config:  config,
		spin:    sp,
	}
	// Seed the transcript from a resumed session.
	for _, msg := range session.Messages {
		m.entries = append(m.entries, entriesFromMessage(msg)...)
	}
	return m
}

// Running returns whether the agent is currently running.
func (m Model) Running() bool { return m.running }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Entries returns the transcript length. Exported for test access.
func (m Model) Entries() int { return len(m.entries) }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 1
		footerHeight := 2
		if !m.ready {
			m.Viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.Viewport.Width = msg.Width
			m.Viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.Input.Width = msg.Width - 4
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case AgentEventMsg:
		m = m.applyEvent(msg.Event)
		m.refresh()
		return m, listenForEvent(m.eventCh, m.doneCh)

	case AgentDoneMsg:
		m.running = false
		m.cancel = nil
		m.eventCh = nil
		m.doneCh = nil
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
			m.entries = append(m.entries, entry{kind: entryError, text: msg.Err.Error()})
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case tea.KeyEsc:
		if m.running && m.cancel != nil {
			m.cancel()
		}
		return m, nil

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		if strings.EqualFold(text, ExitSentinel) {
			return m, tea.Quit
		}
		m.Input.SetValue("")
		return m.startTurn(text)
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// startTurn appends the user message and launches the agent in the
// background, wiring its events into the Bubble Tea message loop.
func (m Model) startTurn(text string) (tea.Model, tea.Cmd) {
	m.session.Messages = append(m.session.Messages, canary.UserMessage{
		Content:   []canary.ContentBlock{canary.TextBlock{Text: text}},
		Timestamp: time.Now(),
	})
	m.entries = append(m.entries, entry{kind: entryUser, text: text})
	m.err = nil
	m.running = true

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan canary.Event, 16)
	m.doneCh = make(chan error, 1)

	m.refresh()
	return m, tea.Batch(
		startAgent(m.run, ctx, m.session, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
		m.spin.Tick,
	)
}

// startAgent runs the agent loop in a command and signals completion. The
// event channel is closed before doneCh is written, so listeners drain
// every buffered event before they can observe completion.
func startAgent(run AgentFunc, ctx context.Context, session *canary.Session, eventCh chan<- canary.Event, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		err := run(ctx, session, func(e canary.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- err
		return nil
	}
}

// listenForEvent waits for the next event from the channel. When the
// channel closes, it reads the error from doneCh and returns AgentDoneMsg.
func listenForEvent(eventCh <-chan canary.Event, doneCh <-chan error) tea.Cmd {
	if eventCh == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-eventCh
		if !ok {
			return AgentDoneMsg{Err: <-doneCh}
		}
		return AgentEventMsg{Event: e}
	}
}

func (m Model) applyEvent(e canary.Event) Model {
	switch e := e.(type) {
	case canary.EventAssistantMessage:
		if text := e.Message.Text(); text != "" {
			m.entries = append(m.entries, entry{kind: entryAssistant, text: text})
		}
	case canary.EventToolCall:
		m.entries = append(m.entries, entry{
			kind:     entryToolCall,
			toolName: e.Call.Name,
			text:     compactJSON(e.Call.Arguments),
		})
	case canary.EventToolResult:
		m.entries = append(m.entries, entry{
			kind:     entryToolResult,
			toolName: e.ToolName,
			text:     e.Result.Render(),
			isError:  e.Result.Failed(),
		})
	}
	return m
}

func entriesFromMessage(msg canary.Message) []entry {
	switch msg := msg.(type) {
	case canary.UserMessage:
		var text string
		for _, b := range msg.Content {
			if tb, ok := b.(canary.TextBlock); ok {
				text += tb.Text
			}
		}
		return []entry{{kind: entryUser, text: text}}
	case canary.AssistantMessage:
		var entries []entry
		if text := msg.Text(); text != "" {
			entries = append(entries, entry{kind: entryAssistant, text: text})
		}
		for _, tc := range msg.ToolCalls() {
			entries = append(entries, entry{kind: entryToolCall, toolName: tc.Name, text: compactJSON(tc.Arguments)})
		}
		return entries
	case canary.ToolResultMessage:
		return []entry{{
			kind:     entryToolResult,
			toolName: msg.ToolName,
			text:     msg.Result.Render(),
			isError:  msg.Result.Failed(),
		}}
	}
	return nil
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
}

func (m Model) renderContent() string {
	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderEntry(e))
	}
	return b.String()
}

func (m Model) renderEntry(e entry) string {
	width := m.Viewport.Width
	switch e.kind {
	case entryUser:
		content := m.styles.UserMsg.Render("> ") + e.text
		return lipgloss.NewStyle().Width(width).Render(content)
	case entryAssistant:
		return markdown.Render(e.text, width, m.theme)
	case entryToolCall:
		header := m.styles.ToolCall.Render("▶ " + e.toolName)
		if e.text != "" {
			header += " " + m.styles.Muted.Render(truncate(e.text, maxPreviewLen))
		}
		return header
	case entryToolResult:
		icon := m.styles.Success.Render("✓")
		preview := truncate(firstLine(e.text), maxPreviewLen)
		if e.isError {
			icon = m.styles.Error.Render("✗")
			preview = m.styles.Error.Render(preview)
		}
		return m.styles.ToolCall.Render("▶ "+e.toolName) + " " + icon + "  " + preview
	case entryError:
		return m.styles.Error.Render("error: " + e.text)
	}
	return ""
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	return m.headerView() + "\n" + m.Viewport.View() + "\n" + m.footerView()
}

func (m Model) headerView() string {
	title := "canary"
	if m.config.ModelName != "" {
		title += " · " + m.config.ModelName
	}
	return runewidth.Truncate(m.styles.Accent.Render(title), m.width, "…")
}

func (m Model) footerView() string {
	if m.running {
		return m.spin.View() + m.styles.Muted.Render(" working… (esc to cancel)") + "\n"
	}
	return m.Input.View() + "\n"
}

func truncate(s string, max int) string {
	return runewidth.Truncate(s, max, "…")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// compactJSON renders raw JSON on a single line for tool-call previews.
func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
