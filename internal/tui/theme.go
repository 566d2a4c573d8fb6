package tui

import "github.com/charmbracelet/lipgloss"

type ThemeName string

const (
	ThemeDark  ThemeName = "dark"
	ThemeLight ThemeName = "light"
)

type Theme struct {
	Name ThemeName

	TextPrimary lipgloss.Color
	TextMuted   lipgloss.Color
	Accent      lipgloss.Color
	Error       lipgloss.Color
	Border      lipgloss.Color

	Title    lipgloss.Style
	Pane     lipgloss.Style
	PaneSel  lipgloss.Style
	Footer   lipgloss.Style
	InputBox lipgloss.Style
	Spinner  lipgloss.Style

	RoleYou lipgloss.Style
	RoleAI  lipgloss.Style
	RoleSys lipgloss.Style
	RoleErr lipgloss.Style
}

func NewTheme(name ThemeName) Theme {
	switch name {
	case ThemeLight:
		return newTheme(ThemeLight, "#1d2433", "#4a5568", "#2563eb", "#b91c1c", "#a0aec0")
	default:
		return newTheme(ThemeDark, "#f2f2f2", "#9aa0a6", "#7aa2f7", "#f7768e", "#3b4261")
	}
}

func newTheme(name ThemeName, primary, muted, accent, errc, border string) Theme {
	t := Theme{
		Name:        name,
		TextPrimary: lipgloss.Color(primary),
		TextMuted:   lipgloss.Color(muted),
		Accent:      lipgloss.Color(accent),
		Error:       lipgloss.Color(errc),
		Border:      lipgloss.Color(border),
	}
	t.Title = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.Pane = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.PaneSel = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Accent).Padding(0, 1)
	t.Footer = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.InputBox = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.Spinner = lipgloss.NewStyle().Foreground(t.Accent)
	t.RoleYou = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.RoleAI = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.RoleSys = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.RoleErr = lipgloss.NewStyle().Bold(true).Foreground(t.Error)
	return t
}
