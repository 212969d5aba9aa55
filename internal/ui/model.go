// Package ui provides internal state management and rendering utilities for ephemeral terminal notifications.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Lifetime is how long a notification stays on screen.
const Lifetime = 3 * time.Second

// NotificationMsg shows Text in Color until it expires.
type NotificationMsg struct {
	Text  string
	Color lipgloss.Color
}

// ClearNotificationMsg resets the notification it was scheduled for.
type ClearNotificationMsg struct {
	seq int
}

// Model encapsulates the state for displaying non-blocking terminal alerts.
type Model struct {
	notification NotificationMsg
	seq          int
}

// Notify returns a tea.Cmd that raises a notification.
func Notify(text string, color lipgloss.Color) tea.Cmd {
	return func() tea.Msg {
		return NotificationMsg{Text: text, Color: color}
	}
}

// Show replaces the current notification and returns the command that
// clears it after Lifetime.
func (m *Model) Show(msg NotificationMsg) tea.Cmd {
	m.seq++
	m.notification = msg

	seq := m.seq
	return tea.Tick(Lifetime, func(time.Time) tea.Msg {
		return ClearNotificationMsg{seq: seq}
	})
}

// Update processes incoming messages to modify the notification state.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NotificationMsg:
		return m.Show(msg)
	case ClearNotificationMsg:
		// a newer notification owns the screen
		if msg.seq == m.seq {
			m.notification = NotificationMsg{}
		}
	}
	return nil
}

// Current returns the text on screen, if any.
func (m *Model) Current() string {
	return m.notification.Text
}

// View appends the current notification to the last line of mainContent.
func (m *Model) View(mainContent string) string {
	if m.notification.Text == "" {
		return mainContent
	}

	notifier := lipgloss.NewStyle().Foreground(m.notification.Color).Render(m.notification.Text)

	lines := strings.Split(mainContent, "\n")
	lines[len(lines)-1] = lines[len(lines)-1] + "  " + notifier
	return strings.Join(lines, "\n")
}
