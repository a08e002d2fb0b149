// Package styles provides colour themes for CLI output.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
)

// Theme defines the colour palette used for terminal output.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is used for section headings.
	Secondary lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates positive outcomes.
	Success lipgloss.Color

	// Warning indicates caution.
	Warning lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Secondary: lipgloss.Color("#06B6D4"), // Cyan
		Muted:     lipgloss.Color("#6C7086"), // Medium gray
		Success:   lipgloss.Color("#A6E3A1"), // Green
		Warning:   lipgloss.Color("#F9E2AF"), // Yellow
		Error:     lipgloss.Color("#F38BA8"), // Red
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for command headers.
	Title lipgloss.Style

	// Heading style for settings sections and passage headers.
	Heading lipgloss.Style

	// Muted style for ids, scores and hints.
	Muted lipgloss.Style

	// Success style for completed work.
	Success lipgloss.Style

	// Warning style for skipped or rejected work.
	Warning lipgloss.Style

	// Error style for failures.
	Error lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Heading: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Outcome returns the style for an ingest outcome.
func (s *Styles) Outcome(outcome domain.IngestOutcome) lipgloss.Style {
	switch outcome {
	case domain.OutcomeIngested:
		return s.Success
	case domain.OutcomeSkippedDuplicate:
		return s.Muted
	case domain.OutcomeRejected:
		return s.Warning
	default:
		return s.Error
	}
}
