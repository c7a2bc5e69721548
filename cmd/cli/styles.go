package cli

import (
	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	primary lipgloss.Color
	accent  lipgloss.Color
	success lipgloss.Color
	danger  lipgloss.Color
	warning lipgloss.Color
	info    lipgloss.Color
	muted   lipgloss.Color
	text    lipgloss.Color
}

var (
	lightPalette = palette{
		primary: lipgloss.Color("#2563EB"),
		accent:  lipgloss.Color("#7C3AED"),
		success: lipgloss.Color("#059669"),
		danger:  lipgloss.Color("#DC2626"),
		warning: lipgloss.Color("#D97706"),
		info:    lipgloss.Color("#2563EB"),
		muted:   lipgloss.Color("#6B7280"),
		text:    lipgloss.Color("#1F2937"),
	}

	darkPalette = palette{
		primary: lipgloss.Color("#60A5FA"),
		accent:  lipgloss.Color("#A78BFA"),
		success: lipgloss.Color("#34D399"),
		danger:  lipgloss.Color("#F87171"),
		warning: lipgloss.Color("#FBBF24"),
		info:    lipgloss.Color("#93C5FD"),
		muted:   lipgloss.Color("#9CA3AF"),
		text:    lipgloss.Color("#F9FAFB"),
	}
)

// Shared styles for the CLI package. applyTheme rebuilds them from the
// palette matching the dark mode preference.
var (
	titleStyle   lipgloss.Style
	headerStyle  lipgloss.Style
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	infoStyle    lipgloss.Style
	mutedStyle   lipgloss.Style
	textStyle    lipgloss.Style

	// Note styles
	noteTitleStyle lipgloss.Style
	publicStyle    lipgloss.Style
	privateStyle   lipgloss.Style
	avatarStyle    lipgloss.Style

	// Navbar styles
	brandStyle    lipgloss.Style
	navLinkStyle  lipgloss.Style
	activeStyle   lipgloss.Style
	statBoxStyle  lipgloss.Style
	promptStyle   lipgloss.Style
)

var currentPalette palette

func init() {
	applyTheme(false)
}

func applyTheme(dark bool) {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	currentPalette = p

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.primary).
		MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.accent)

	successStyle = lipgloss.NewStyle().
		Foreground(p.success).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(p.danger).
		Bold(true)

	warningStyle = lipgloss.NewStyle().
		Foreground(p.warning).
		Bold(true)

	infoStyle = lipgloss.NewStyle().
		Foreground(p.info)

	mutedStyle = lipgloss.NewStyle().
		Foreground(p.muted)

	textStyle = lipgloss.NewStyle().
		Foreground(p.text)

	noteTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.text)

	publicStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.success).
		Padding(0, 1)

	privateStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.muted).
		Padding(0, 1)

	avatarStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(p.accent).
		Padding(0, 1)

	brandStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(p.primary).
		Padding(0, 1)

	navLinkStyle = lipgloss.NewStyle().
		Foreground(p.muted).
		Padding(0, 1)

	activeStyle = lipgloss.NewStyle().
		Foreground(p.primary).
		Bold(true).
		Underline(true).
		Padding(0, 1)

	statBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.muted).
		Padding(0, 2)

	promptStyle = lipgloss.NewStyle().
		Foreground(p.primary).
		Bold(true)
}

func visibilityBadge(public bool) string {
	if public {
		return publicStyle.Render("PUBLIC")
	}
	return privateStyle.Render("PRIVATE")
}
