// Package console owns everything human-facing on the terminal: styled
// status output, the interactive board chooser, and the single-keypress
// confirmation gate. Log output never goes through here.
package console

import "github.com/charmbracelet/lipgloss"

// Semantic colors. Warnings are red and confirmations green per the tool's
// console contract; everything else stays unstyled.
var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)
