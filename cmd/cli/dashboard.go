package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/thinkpad-online/notes/internal/common"
	"github.com/thinkpad-online/notes/internal/pages"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Short:   "Show your note statistics and recent notes",
	PreRunE: requireSession,
	RunE:    runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx, cleanup := common.WithInterrupt(cmd.Context())
	defer cleanup()

	page := pages.NewDashboard(client, sessionStore)
	page.Mount()
	defer page.Unmount()

	<-page.Refresh(ctx)
	if err := page.Err(); err != nil {
		return explainAPIError(err)
	}

	renderDashboard(cmd.OutOrStdout(), page)
	return nil
}

func renderDashboard(w io.Writer, page *pages.Dashboard) {
	name := sessionStore.Read().Projection().DisplayName

	fmt.Fprintln(w, avatarStyle.Render(page.Initials())+" "+titleStyle.Render(fmt.Sprintf("Welcome back, %s!", name)))

	stats := page.Stats()
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top,
		statBoxStyle.Render(fmt.Sprintf("Total\n%d", stats.Total)),
		statBoxStyle.Render(fmt.Sprintf("Public\n%d", stats.Public)),
		statBoxStyle.Render(fmt.Sprintf("Private\n%d", stats.Private)),
	))
	fmt.Fprintln(w)

	fmt.Fprintln(w, headerStyle.Render("Recent Notes"))
	fmt.Fprintln(w)
	printNoteTable(w, page.Recent())
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
