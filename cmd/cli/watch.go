package cli

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/thinkpad-online/notes/internal/common"
	"github.com/thinkpad-online/notes/internal/notify"
	"github.com/thinkpad-online/notes/internal/pages"
	"github.com/thinkpad-online/notes/internal/router"
	"github.com/thinkpad-online/notes/internal/sessions"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show a live navbar that follows logins, logouts and theme changes",
	Long: `Shows a live navbar. It updates as soon as the session or theme changes,
whether from this terminal or from any other thinkpad process.`,
	RunE: runWatch,
}

// sessionChangedMsg only signals a change. The model reads the view's current
// state, so a late message cannot roll the screen back.
type sessionChangedMsg struct{}

type themeChangedMsg struct {
	dark bool
}

type statsLoadedMsg struct {
	applied bool
}

type actionFailedMsg struct {
	err error
}

type watchModel struct {
	ctx        context.Context
	view       *sessions.View
	dashboard  *pages.Dashboard
	projection sessions.Projection
	dark       bool
	spinner    spinner.Model
	loading    bool
	stats      *pages.Stats
	err        error
	changes    int
	lastChange time.Time
	quitting   bool
}

func newWatchModel(ctx context.Context, view *sessions.View, dashboard *pages.Dashboard, dark bool) watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(currentPalette.primary)

	projection := view.State()

	return watchModel{
		ctx:        ctx,
		view:       view,
		dashboard:  dashboard,
		projection: projection,
		dark:       dark,
		spinner:    s,
		loading:    projection.Authenticated,
	}
}

func (m watchModel) Init() tea.Cmd {
	// Pick up changes made between mounting the view and starting the program
	cmds := []tea.Cmd{m.spinner.Tick, func() tea.Msg {
		return sessionChangedMsg{}
	}}
	if m.projection.Authenticated {
		cmds = append(cmds, m.loadStats())
	}
	return tea.Batch(cmds...)
}

func (m watchModel) loadStats() tea.Cmd {
	return func() tea.Msg {
		return statsLoadedMsg{applied: <-m.dashboard.Refresh(m.ctx)}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "t":
			// Runs off the event loop, the change comes back as themeChangedMsg
			return m, func() tea.Msg {
				if _, err := prefs.Toggle(); err != nil {
					return actionFailedMsg{err: err}
				}
				return nil
			}
		case "r":
			if m.projection.Authenticated {
				m.loading = true
				return m, m.loadStats()
			}
		case "l":
			if m.projection.Authenticated {
				return m, func() tea.Msg {
					if err := sessions.Logout(sessionStore, nav); err != nil {
						return actionFailedMsg{err: err}
					}
					return nil
				}
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sessionChangedMsg:
		current := m.view.State()
		changed := current != m.projection
		m.projection = current
		if !changed {
			return m, nil
		}

		m.changes++
		m.lastChange = time.Now()
		m.err = nil

		if !m.projection.Authenticated {
			m.stats = nil
			m.loading = false
			return m, nil
		}
		m.loading = true
		return m, m.loadStats()

	case statsLoadedMsg:
		if !msg.applied {
			return m, nil
		}
		m.loading = false
		if err := m.dashboard.Err(); err != nil {
			m.err = explainAPIError(err)
			m.stats = nil
			return m, nil
		}
		stats := m.dashboard.Stats()
		m.stats = &stats

	case themeChangedMsg:
		m.dark = msg.dark
		applyTheme(msg.dark)
		m.spinner.Style = lipgloss.NewStyle().Foreground(currentPalette.primary)
		m.changes++
		m.lastChange = time.Now()

	case actionFailedMsg:
		m.err = msg.err
	}

	return m, nil
}

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}

	var content strings.Builder

	content.WriteString(renderNavbar(m.projection, m.dark, router.Home))
	content.WriteString("\n\n")

	switch {
	case !m.projection.Authenticated:
		content.WriteString(infoStyle.Render("Not logged in. Run 'thinkpad login' in any terminal."))
	case m.loading:
		content.WriteString(fmt.Sprintf("%s Loading your notes...", m.spinner.View()))
	case m.stats != nil:
		content.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			statBoxStyle.Render(fmt.Sprintf("Total\n%d", m.stats.Total)),
			statBoxStyle.Render(fmt.Sprintf("Public\n%d", m.stats.Public)),
			statBoxStyle.Render(fmt.Sprintf("Private\n%d", m.stats.Private)),
		))
	}
	content.WriteString("\n")

	if m.err != nil {
		content.WriteString(errorStyle.Render(fmt.Sprintf("Error: %s", m.err.Error())))
		content.WriteString("\n")
	}

	if !m.lastChange.IsZero() {
		content.WriteString(mutedStyle.Render(fmt.Sprintf("%d changes, last at %s", m.changes, m.lastChange.Format("15:04:05"))))
		content.WriteString("\n")
	}

	help := "t theme • q quit"
	if m.projection.Authenticated {
		help = "r refresh • l logout • " + help
	}
	content.WriteString(mutedStyle.Render(help))
	content.WriteString("\n")

	return content.String()
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cleanup := common.WithInterrupt(cmd.Context())
	defer cleanup()

	var program *tea.Program
	var started atomic.Bool

	send := func(msg tea.Msg) {
		if started.Load() {
			program.Send(msg)
		}
	}

	view := sessions.Mount(sessionStore, func(sessions.Projection) {
		send(sessionChangedMsg{})
	})
	defer view.Unmount()

	themeSub := prefs.Subscribe(func(notify.Event) {
		send(themeChangedMsg{dark: prefs.DarkMode()})
	})
	defer themeSub.Unsubscribe()

	dashboard := pages.NewDashboard(client, sessionStore)
	dashboard.Mount()
	defer dashboard.Unmount()

	program = tea.NewProgram(
		newWatchModel(ctx, view, dashboard, prefs.DarkMode()),
		tea.WithContext(ctx),
	)
	started.Store(true)

	logrus.Debugln("Watching for session changes")

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
