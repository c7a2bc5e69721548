package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:       "theme [dark|light|toggle]",
	Short:     "Show or change the color theme",
	Long:      "Shows the current theme, or switches it. The choice is kept across logins and picked up by running thinkpad processes.",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"dark", "light", "toggle"},
	RunE:      runTheme,
}

func themeName(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}

func setTheme(choice string) (bool, error) {
	switch strings.ToLower(choice) {
	case "dark":
		return true, prefs.SetDarkMode(true)
	case "light":
		return false, prefs.SetDarkMode(false)
	case "toggle":
		return prefs.Toggle()
	default:
		return prefs.DarkMode(), fmt.Errorf("unknown theme %q: expected dark, light or toggle", choice)
	}
}

func runTheme(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Printf("Theme: %s\n", themeName(prefs.DarkMode()))
		return nil
	}

	dark, err := setTheme(args[0])
	if err != nil {
		return err
	}

	applyTheme(dark)
	fmt.Println(successStyle.Render(fmt.Sprintf("Theme set to %s", themeName(dark))))
	return nil
}

func init() {
	rootCmd.AddCommand(themeCmd)
}
