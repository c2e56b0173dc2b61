package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/gubarz/walkmd/internal/config"
)

// StyleManager encapsulates all TUI styles and provides methods for style operations
type StyleManager struct {
	// List view styles
	Title    lipgloss.Style
	Location lipgloss.Style
	Summary  lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Dim      lipgloss.Style
	Skipped  lipgloss.Style

	// Preview styles
	PreviewTitle lipgloss.Style
	PreviewBody  lipgloss.Style
	Gutter       lipgloss.Style
	Code         lipgloss.Style

	// Chrome styles
	Border  lipgloss.Style
	Divider lipgloss.Style

	// Colors for direct access
	SelectedBg lipgloss.Color
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	return &StyleManager{
		Title:        lipgloss.NewStyle().Bold(true),
		Location:     lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Summary:      lipgloss.NewStyle(),
		Selected:     lipgloss.NewStyle().Background(lipgloss.Color("236")),
		Cursor:       lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Dim:          lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Skipped:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true),
		PreviewTitle: lipgloss.NewStyle().Bold(true),
		PreviewBody:  lipgloss.NewStyle(),
		Gutter:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Code:         lipgloss.NewStyle(),
		Border:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
		Divider:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		SelectedBg:   lipgloss.Color("236"),
	}
}

// LoadFromConfig updates styles based on configuration
func (s *StyleManager) LoadFromConfig() {
	titleColor := parseANSIColor(config.GetColorTitle())
	codeColor := parseANSIColor(config.GetColorCode())
	dimColor := parseANSIColor(config.GetColorDim())
	borderColor := lipgloss.Color(config.GetColorBorder())

	s.Title = lipgloss.NewStyle().Foreground(titleColor)
	s.Dim = lipgloss.NewStyle().Foreground(dimColor)
	s.Skipped = lipgloss.NewStyle().Foreground(dimColor).Strikethrough(true)
	s.Gutter = lipgloss.NewStyle().Foreground(dimColor)

	// Preview header is bold
	s.PreviewTitle = lipgloss.NewStyle().Bold(true).Foreground(titleColor)
	s.Code = lipgloss.NewStyle().Foreground(codeColor)

	s.Border = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderColor)
	s.Divider = lipgloss.NewStyle().Foreground(borderColor)
}

// WithSelection returns a copy of the given style with the selected background applied
func (s *StyleManager) WithSelection(style lipgloss.Style) lipgloss.Style {
	return style.Background(s.SelectedBg)
}

// parseANSIColor converts ANSI color codes to lipgloss colors
func parseANSIColor(code string) lipgloss.Color {
	ansiToLipgloss := map[string]string{
		"30": "0", "31": "1", "32": "2", "33": "3",
		"34": "4", "35": "5", "36": "6", "37": "7",
		"90": "8", "91": "9", "92": "10", "93": "11",
		"94": "12", "95": "13", "96": "14", "97": "15",
	}
	if mapped, ok := ansiToLipgloss[code]; ok {
		return lipgloss.Color(mapped)
	}
	return lipgloss.Color(code)
}

// Global style manager instance
var styles = DefaultStyles()

// RefreshStyles updates the global styles from config
func RefreshStyles() {
	styles.LoadFromConfig()
}

// Styles returns the active style manager
func Styles() *StyleManager {
	return styles
}
