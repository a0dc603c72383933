package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/timvw/agent-studio/internal/studio"
	"github.com/timvw/agent-studio/internal/tabs"
)

// Theme defines all colors used by the dashboard.
// Use DarkTheme() or LightTheme() to get a pre-built theme.
type Theme struct {
	Primary         lipgloss.Color // title, cursor
	Secondary       lipgloss.Color // selected row text
	Accent          lipgloss.Color // active tab background, focused border
	Error           lipgloss.Color // error status, failed calls
	Warning         lipgloss.Color // paused, draft
	Success         lipgloss.Color // active status
	Info            lipgloss.Color // counters, links
	Text            lipgloss.Color // primary text
	TextMuted       lipgloss.Color // descriptions, hints
	BackgroundElem  lipgloss.Color // highlighted row background
	Border          lipgloss.Color // separators
	SkeletonBlock   lipgloss.Color // skeleton loader bars
	MarkdownPreview string         // glamour standard style
}

// DarkTheme returns the default dark theme.
func DarkTheme() Theme {
	return Theme{
		Primary:         lipgloss.Color("#fab283"),
		Secondary:       lipgloss.Color("#5c9cf5"),
		Accent:          lipgloss.Color("#9d7cd8"),
		Error:           lipgloss.Color("#e06c75"),
		Warning:         lipgloss.Color("#f5a742"),
		Success:         lipgloss.Color("#7fd88f"),
		Info:            lipgloss.Color("#56b6c2"),
		Text:            lipgloss.Color("#eeeeee"),
		TextMuted:       lipgloss.Color("#808080"),
		BackgroundElem:  lipgloss.Color("#1e1e1e"),
		Border:          lipgloss.Color("#484848"),
		SkeletonBlock:   lipgloss.Color("#303030"),
		MarkdownPreview: "dark",
	}
}

// LightTheme returns a light theme for bright terminal backgrounds.
func LightTheme() Theme {
	return Theme{
		Primary:         lipgloss.Color("#b35c00"),
		Secondary:       lipgloss.Color("#0550ae"),
		Accent:          lipgloss.Color("#6639ba"),
		Error:           lipgloss.Color("#cf222e"),
		Warning:         lipgloss.Color("#bf8700"),
		Success:         lipgloss.Color("#116329"),
		Info:            lipgloss.Color("#0969da"),
		Text:            lipgloss.Color("#1f2328"),
		TextMuted:       lipgloss.Color("#656d76"),
		BackgroundElem:  lipgloss.Color("#f6f8fa"),
		Border:          lipgloss.Color("#d0d7de"),
		SkeletonBlock:   lipgloss.Color("#e6e8eb"),
		MarkdownPreview: "light",
	}
}

// ThemeByName returns a theme by name. Defaults to dark.
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	default:
		return DarkTheme()
	}
}

// Tabs returns the label strip colors for detail sections.
func (t Theme) Tabs() tabs.Theme {
	return tabs.Theme{
		Active:   t.Text,
		ActiveBg: t.Accent,
		Inactive: t.TextMuted,
		Border:   t.Border,
	}
}

// styles holds all lipgloss styles derived from a Theme.
type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	selected lipgloss.Style
	focused  lipgloss.Style
	counter  lipgloss.Style
	label    lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	ok       lipgloss.Style
	dim      lipgloss.Style
	text     lipgloss.Style
	status   lipgloss.Style
	skeleton lipgloss.Style
	bar      lipgloss.Style
}

// newStyles builds all styles from a theme.
func newStyles(t Theme) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		header:   lipgloss.NewStyle().Foreground(t.Border),
		selected: lipgloss.NewStyle().Bold(true).Foreground(t.Secondary).Background(t.BackgroundElem),
		focused:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		counter:  lipgloss.NewStyle().Bold(true).Foreground(t.Info),
		label:    lipgloss.NewStyle().Foreground(t.TextMuted).Width(14),
		err:      lipgloss.NewStyle().Foreground(t.Error),
		warn:     lipgloss.NewStyle().Foreground(t.Warning),
		ok:       lipgloss.NewStyle().Foreground(t.Success),
		dim:      lipgloss.NewStyle().Foreground(t.TextMuted),
		text:     lipgloss.NewStyle().Foreground(t.Text),
		status:   lipgloss.NewStyle().Foreground(t.TextMuted),
		skeleton: lipgloss.NewStyle().Foreground(t.SkeletonBlock),
		bar:      lipgloss.NewStyle().Foreground(t.Secondary),
	}
}

// statusStyle colors an entity status.
func (s styles) statusStyle(st studio.Status) lipgloss.Style {
	switch st {
	case studio.StatusActive:
		return s.ok
	case studio.StatusError:
		return s.err
	case studio.StatusPaused, studio.StatusDraft:
		return s.warn
	default:
		return s.dim
	}
}

// statusIcon returns a one-cell marker for a status.
func statusIcon(st studio.Status) string {
	switch st {
	case studio.StatusActive:
		return "●"
	case studio.StatusError:
		return "✗"
	case studio.StatusPaused:
		return "‖"
	case studio.StatusDraft:
		return "○"
	default:
		return "·"
	}
}
