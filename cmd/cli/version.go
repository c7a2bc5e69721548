package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thinkpad-online/notes/internal/common"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	// Version needs no config or state
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	PersistentPostRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ThinkPad %s\n", common.GetVersion())
		fmt.Println(mutedStyle.Render(common.UserAgent()))
	},
}

func init() {

	rootCmd.AddCommand(versionCmd)
}
