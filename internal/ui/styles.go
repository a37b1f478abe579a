package ui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha (dark theme)
var mocha = struct {
	Cyan, Green, Overlay1, Text lipgloss.Color
}{
	Cyan:     "#94e2d5",
	Green:    "#a6e3a1",
	Overlay1: "#7f849c",
	Text:     "#cdd6f4",
}

// Catppuccin Latte (light theme)
var latte = struct {
	Cyan, Green, Overlay1, Text lipgloss.Color
}{
	Cyan:     "#179299",
	Green:    "#40a02b",
	Overlay1: "#8c8fa1",
	Text:     "#4c4f69",
}

// ThemePalette holds the current color scheme.
type ThemePalette struct {
	Cyan, Green, Overlay, Text lipgloss.Color
}

var currentTheme ThemePalette

func init() {
	if DetectTheme() == ThemeDark {
		SetDarkTheme()
	} else {
		SetLightTheme()
	}
}

// SetDarkTheme switches to Catppuccin Mocha.
func SetDarkTheme() {
	currentTheme = ThemePalette{
		Cyan: mocha.Cyan, Green: mocha.Green, Overlay: mocha.Overlay1, Text: mocha.Text,
	}
	refreshStyles()
}

// SetLightTheme switches to Catppuccin Latte.
func SetLightTheme() {
	currentTheme = ThemePalette{
		Cyan: latte.Cyan, Green: latte.Green, Overlay: latte.Overlay1, Text: latte.Text,
	}
	refreshStyles()
}

// SetTheme applies t, resolving ThemeAuto via DetectTheme.
func SetTheme(t Theme) {
	resolved := t
	if resolved == ThemeAuto {
		resolved = DetectTheme()
	}
	if resolved == ThemeDark {
		SetDarkTheme()
		return
	}
	SetLightTheme()
}

// Prompt, ghost-text and suggestion-list styles used by internal/editor.
var (
	PromptUserStyle lipgloss.Style // user@host, cyan
	PromptPathStyle lipgloss.Style // cwd, green
	GhostTextStyle  lipgloss.Style // dimmed inline suggestion
	SuggestStyle    lipgloss.Style // tab-separated suggestion list
	ErrorStyle      lipgloss.Style
)

func refreshStyles() {
	PromptUserStyle = lipgloss.NewStyle().Foreground(currentTheme.Cyan)
	PromptPathStyle = lipgloss.NewStyle().Foreground(currentTheme.Green)
	GhostTextStyle = lipgloss.NewStyle().Foreground(currentTheme.Overlay).Faint(true)
	SuggestStyle = lipgloss.NewStyle().Foreground(currentTheme.Text)
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")).Bold(true)
}
