package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thinkpad-online/notes/internal/sessions"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is logged in",
	RunE:  runStatus,
}

type statusReport struct {
	sessions.Projection `yaml:",inline"`

	Endpoint string `json:"endpoint" yaml:"endpoint"`
	State    string `json:"state" yaml:"state"`
	Theme    string `json:"theme" yaml:"theme"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	outputValue, _ := cmd.Flags().GetString("output")
	format, err := parseOutputFormat(outputValue)
	if err != nil {
		return err
	}

	report := statusReport{
		Projection: sessionStore.Read().Projection(),
		Endpoint:   cfg.GetAPIUrl(),
		State:      cfg.GetSessionPath(),
		Theme:      themeName(prefs.DarkMode()),
	}

	if format != outputTable {
		return writeStructured(cmd.OutOrStdout(), format, report, "")
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, renderNavbar(report.Projection, prefs.DarkMode(), nav.Current().Route))
	fmt.Fprintln(w)

	if report.Authenticated {
		fmt.Fprintln(w, successStyle.Render("Logged in as "+report.DisplayName))
	} else {
		fmt.Fprintln(w, infoStyle.Render("Not logged in"))
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("API:   %s", report.Endpoint)))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("State: %s", report.State)))

	return nil
}

func init() {
	statusCmd.Flags().StringP("output", "o", string(outputTable), "Output format: table, json or yaml")
	rootCmd.AddCommand(statusCmd)
}
