// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ConnectionStatus is one endpoint's health for display.
type ConnectionStatus struct {
	Name         string
	State        string // connected, degraded, disconnected, unknown
	Latency      time.Duration
	LastBlock    uint64
	LastUpdate   time.Time
	OpenCircuits []string
}

// StatusComponent renders connection status.
type StatusComponent struct {
	connections []ConnectionStatus
}

// NewStatusComponent creates a new status component.
func NewStatusComponent() *StatusComponent {
	return &StatusComponent{
		connections: make([]ConnectionStatus, 0),
	}
}

// Update updates a connection's status.
func (s *StatusComponent) Update(status ConnectionStatus) {
	for i, conn := range s.connections {
		if conn.Name == status.Name {
			s.connections[i] = status
			return
		}
	}
	s.connections = append(s.connections, status)
}

// View renders the status component as a single line.
func (s *StatusComponent) View() string {
	if len(s.connections) == 0 {
		return "No connections"
	}

	parts := make([]string, 0, len(s.connections))
	for _, conn := range s.connections {
		var icon string
		var style lipgloss.Style
		switch conn.State {
		case "connected":
			icon, style = "●", lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
		case "degraded":
			icon, style = "◐", lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
		default:
			icon, style = "○", lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
		}

		line := fmt.Sprintf("%s %s", icon, conn.Name)
		if conn.Latency > 0 {
			line += fmt.Sprintf(" (%dms)", conn.Latency.Milliseconds())
		}
		if len(conn.OpenCircuits) > 0 {
			line += " open: " + strings.Join(conn.OpenCircuits, ",")
		}
		parts = append(parts, style.Render(line))
	}

	return strings.Join(parts, "  │  ")
}
