package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"goalplan/internal/store"
)

// Theme handling.
//
// The editor ships a light and a dark palette. The active one is resolved at
// startup before anything paints: persisted preference first, then the
// terminal's dark-background hint, then light. The user can toggle at
// runtime; the toggle is persisted so the next session starts correctly.

type themeID string

const (
	themeLight themeID = "light"
	themeDark  themeID = "dark"
)

type palette struct {
	fg         lipgloss.TerminalColor
	muted      lipgloss.TerminalColor
	accent     lipgloss.TerminalColor
	accentFg   lipgloss.TerminalColor
	selectedBg lipgloss.TerminalColor
	selectedFg lipgloss.TerminalColor
	controlBg  lipgloss.TerminalColor
	danger     lipgloss.TerminalColor
	border     lipgloss.TerminalColor
}

var (
	lightPalette = palette{
		fg:         lipgloss.Color("235"),
		muted:      lipgloss.Color("243"),
		accent:     lipgloss.Color("27"), // blue
		accentFg:   lipgloss.Color("255"),
		selectedBg: lipgloss.Color("#e9e9e9"),
		selectedFg: lipgloss.Color("235"),
		controlBg:  lipgloss.Color("254"),
		danger:     lipgloss.Color("160"),
		border:     lipgloss.Color("250"),
	}
	darkPalette = palette{
		fg:         lipgloss.Color("252"),
		muted:      lipgloss.Color("245"),
		accent:     lipgloss.Color("62"),
		accentFg:   lipgloss.Color("235"),
		selectedBg: lipgloss.Color("#262626"),
		selectedFg: lipgloss.Color("255"),
		controlBg:  lipgloss.Color("236"),
		danger:     lipgloss.Color("203"),
		border:     lipgloss.Color("243"),
	}

	themeMu      sync.RWMutex
	currentTheme = themeLight
	colors       = lightPalette
)

// resolveThemePreference picks the startup theme: config > terminal hint >
// light.
func resolveThemePreference(cfg *store.GlobalConfig) themeID {
	if cfg != nil && cfg.UI != nil {
		switch themeID(strings.ToLower(strings.TrimSpace(cfg.UI.Theme))) {
		case themeLight:
			return themeLight
		case themeDark:
			return themeDark
		}
	}
	if termenv.HasDarkBackground() {
		return themeDark
	}
	return themeLight
}

func applyThemePreference(cfg *store.GlobalConfig) {
	setTheme(resolveThemePreference(cfg))
}

func setTheme(id themeID) {
	themeMu.Lock()
	defer themeMu.Unlock()
	currentTheme = id
	if id == themeDark {
		colors = darkPalette
	} else {
		colors = lightPalette
	}
}

func activeTheme() themeID {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

func toggleTheme() themeID {
	if activeTheme() == themeDark {
		setTheme(themeLight)
		return themeLight
	}
	setTheme(themeDark)
	return themeDark
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colors.accent)
}

func styleMuted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colors.muted)
}

func styleNotice() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colors.accent)
}

func styleDanger() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colors.danger)
}

func styleSelectedRow() lipgloss.Style {
	return lipgloss.NewStyle().Background(colors.selectedBg).Foreground(colors.selectedFg)
}

func styleButton(active bool) lipgloss.Style {
	st := lipgloss.NewStyle().Padding(0, 1).Foreground(colors.fg).Background(colors.controlBg)
	if active {
		st = st.Foreground(colors.selectedFg).Background(colors.selectedBg).Bold(true)
	}
	return st
}

func styleGroupBox(selected bool) lipgloss.Style {
	b := colors.border
	if selected {
		b = colors.accent
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(b).
		Padding(0, 1)
}

// markdownStyle maps the active theme onto a glamour standard style.
func markdownStyle() string {
	if activeTheme() == themeDark {
		return "dark"
	}
	return "light"
}
