package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/thinkpad-online/notes/internal/common"
	"github.com/thinkpad-online/notes/internal/pages"
)

var communityCmd = &cobra.Command{
	Use:   "community",
	Short: "Browse notes shared by the community",
	RunE:  runCommunity,
}

func runCommunity(cmd *cobra.Command, args []string) error {
	outputValue, _ := cmd.Flags().GetString("output")
	expression, _ := cmd.Flags().GetString("jq")

	format, err := parseOutputFormat(outputValue)
	if err != nil {
		return err
	}

	ctx, cleanup := common.WithInterrupt(cmd.Context())
	defer cleanup()

	page := pages.NewCommunity(client)
	page.Mount()
	defer page.Unmount()

	<-page.Refresh(ctx)
	if err := page.Err(); err != nil {
		return err
	}

	posts := page.Posts()

	if format == outputTable && len(expression) > 0 {
		format = outputJSON
	}
	if format != outputTable {
		return writeStructured(cmd.OutOrStdout(), format, posts, expression)
	}

	renderCommunity(cmd.OutOrStdout(), posts)
	return nil
}

func renderCommunity(w io.Writer, posts []pages.Post) {
	fmt.Fprintln(w, titleStyle.Render("Community Notes"))

	if len(posts) == 0 {
		fmt.Fprintln(w, infoStyle.Render("No public notes yet"))
		return
	}

	for _, post := range posts {
		fmt.Fprintf(w, "%s %s\n", avatarStyle.Render(post.Initial()), noteTitleStyle.Render(post.Note.Title))
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("  by %s on %s", post.Author, formatTime(post.Note))))
		if preview := previewContent(post.Note.Content, 120); len(preview) > 0 {
			fmt.Fprintln(w, "  "+textStyle.Render(preview))
		}
		fmt.Fprintln(w)
	}
}

func init() {
	communityCmd.Flags().StringP("output", "o", string(outputTable), "Output format: table, json or yaml")
	communityCmd.Flags().String("jq", "", "jq expression applied to the posts before printing")
	rootCmd.AddCommand(communityCmd)
}
