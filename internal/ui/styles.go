package ui

import "github.com/charmbracelet/lipgloss"

// StyleName selects one of the semantic terminal styles.
type StyleName string

const (
	StyleTitle   StyleName = "title"
	StyleAccent  StyleName = "accent"
	StyleSuccess StyleName = "success"
	StyleWarning StyleName = "warning"
	StyleError   StyleName = "error"
	StyleDim     StyleName = "dim"
)

var (
	// Colors meet WCAG AA contrast on dark surfaces.
	AccentColor  = lipgloss.Color("#A78BFA") // Purple
	SuccessColor = lipgloss.Color("#10B981") // Green
	WarningColor = lipgloss.Color("#F59E0B") // Amber
	ErrorColor   = lipgloss.Color("#F87171") // Red
	MutedColor   = lipgloss.Color("#9CA3AF") // Gray

	Title   = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)
	Accent  = lipgloss.NewStyle().Foreground(AccentColor)
	Success = lipgloss.NewStyle().Foreground(SuccessColor)
	Warning = lipgloss.NewStyle().Foreground(WarningColor)
	Error   = lipgloss.NewStyle().Foreground(ErrorColor)
	Dim     = lipgloss.NewStyle().Foreground(MutedColor)
)

var styleTable = map[StyleName]lipgloss.Style{
	StyleTitle:   Title,
	StyleAccent:  Accent,
	StyleSuccess: Success,
	StyleWarning: Warning,
	StyleError:   Error,
	StyleDim:     Dim,
}

// levelStyles maps notification levels to the style of their glyph.
var levelStyles = map[Level]lipgloss.Style{
	LevelInfo:    Dim,
	LevelWarn:    Warning,
	LevelError:   Error,
	LevelSuccess: Success,
}

// levelGlyphs are the one-character notification prefixes.
var levelGlyphs = map[Level]string{
	LevelInfo:    "•",
	LevelWarn:    "!",
	LevelError:   "✗",
	LevelSuccess: "✓",
}
