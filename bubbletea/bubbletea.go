// Package bubbletea provides the terminal chat UI for canary.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jlisowski/canary"
)

// AgentFunc runs one user turn of the agent loop, forwarding progress
// events to onEvent. It blocks until the turn completes or ctx is
// cancelled.
type AgentFunc func(ctx context.Context, session *canary.Session, onEvent func(canary.Event)) error

// Config carries static display settings for the TUI.
type Config struct {
	ModelName string
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
