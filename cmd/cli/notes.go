package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/thinkpad-online/notes/internal/common"
	"github.com/thinkpad-online/notes/internal/models"
	"github.com/thinkpad-online/notes/internal/pages"
	"github.com/thinkpad-online/notes/internal/router"
)

const timeLayout = "2006-01-02 15:04"

var notesCmd = &cobra.Command{
	Use:     "notes",
	Short:   "List and manage your notes",
	PreRunE: requireSession,
	RunE:    runNotesList,
}

var notesListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List your notes",
	PreRunE: requireSession,
	RunE:    runNotesList,
}

var notesCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Write a new note",
	PreRunE: requireSession,
	RunE:    runNotesCreate,
}

var notesUpdateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Edit one of your notes",
	Args:    cobra.ExactArgs(1),
	PreRunE: requireSession,
	RunE:    runNotesUpdate,
}

var notesDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Short:   "Delete one of your notes",
	Args:    cobra.ExactArgs(1),
	PreRunE: requireSession,
	RunE:    runNotesDelete,
}

func runNotesList(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	search, _ := flags.GetString("search")
	filterValue, _ := flags.GetString("filter")
	sortValue, _ := flags.GetString("sort")
	outputValue, _ := flags.GetString("output")
	expression, _ := flags.GetString("jq")

	filter, err := pages.ParseFilter(filterValue)
	if err != nil {
		return err
	}
	order, err := pages.ParseSortOrder(sortValue)
	if err != nil {
		return err
	}
	format, err := parseOutputFormat(outputValue)
	if err != nil {
		return err
	}

	ctx, cleanup := common.WithInterrupt(cmd.Context())
	defer cleanup()

	page := pages.NewAllNotes(client, sessionStore)
	page.Mount()
	defer page.Unmount()

	<-page.Refresh(ctx)
	if err := page.Err(); err != nil {
		return explainAPIError(err)
	}

	query := pages.Query{Search: search, Filter: filter, Sort: order}
	notes := page.Query(query)

	if format == outputTable && len(expression) > 0 {
		format = outputJSON
	}
	if format != outputTable {
		return writeStructured(cmd.OutOrStdout(), format, notes, expression)
	}

	mine := page.Mine()
	printNoteTable(cmd.OutOrStdout(), notes)
	fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(describeQuery(len(notes), len(mine), query)))
	return nil
}

func describeQuery(shown, total int, query pages.Query) string {
	summary := fmt.Sprintf("Showing %d of %d notes", shown, total)
	if len(query.Search) > 0 {
		summary += fmt.Sprintf(" matching %q", query.Search)
	}
	if query.Filter != pages.FilterAll && len(query.Filter) > 0 {
		summary += fmt.Sprintf(" (%s only)", query.Filter)
	}
	return summary
}

func printNoteTable(w io.Writer, notes []models.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(w, infoStyle.Render("No notes found"))
		return
	}

	for _, note := range notes {
		fmt.Fprintf(w, "%s %s\n", noteTitleStyle.Render(note.Title), visibilityBadge(note.IsPublic))
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("  id: %s  created: %s", note.ID, formatTime(note))))
		if preview := previewContent(note.Content, 80); len(preview) > 0 {
			fmt.Fprintln(w, "  "+textStyle.Render(preview))
		}
		fmt.Fprintln(w)
	}
}

func formatTime(note models.Note) string {
	if note.CreatedAt.IsZero() {
		return "unknown"
	}
	created := note.CreatedAt.Local().Format(timeLayout)
	if note.WasUpdated() {
		return fmt.Sprintf("%s (updated %s)", created, note.UpdatedAt.Local().Format(timeLayout))
	}
	return created
}

func previewContent(content string, limit int) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit-1]) + "…"
}

// noteForm prompts for the fields of a note, prefilled with input.
func noteForm(heading string, input *models.NoteInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&input.Title).
				Validate(required("title")),
			huh.NewText().
				Title("Content").
				Value(&input.Content).
				Validate(required("content")),
			huh.NewConfirm().
				Title("Make this note public?").
				Description("Public notes appear in the community feed").
				Value(&input.IsPublic),
		).Title(heading),
	)
}

func readNoteFlags(cmd *cobra.Command, input *models.NoteInput) bool {
	flags := cmd.Flags()
	if flags.Changed("title") {
		input.Title, _ = flags.GetString("title")
	}
	if flags.Changed("content") {
		input.Content, _ = flags.GetString("content")
	}
	if flags.Changed("public") {
		input.IsPublic, _ = flags.GetBool("public")
	}
	return flags.Changed("title") || flags.Changed("content") || flags.Changed("public")
}

func runNotesCreate(cmd *cobra.Command, args []string) error {
	ctx, cleanup := common.WithInterrupt(cmd.Context())
	defer cleanup()

	var input models.NoteInput
	if !readNoteFlags(cmd, &input) {
		if err := noteForm("Create New Note", &input).Run(); err != nil {
			return fmt.Errorf("create cancelled: %w", err)
		}
	}

	editor := pages.NewEditor(client, "")
	note, err := editor.Submit(ctx, nav, input)
	if err != nil {
		return explainAPIError(err)
	}

	fmt.Println(successStyle.Render("Note created"), mutedStyle.Render(note.ID))
	return nil
}

func runNotesUpdate(cmd *cobra.Command, args []string) error {
	ctx, cleanup := common.WithInterrupt(cmd.Context())
	defer cleanup()

	editor := pages.NewEditor(client, args[0])
	editor.Mount()
	defer editor.Unmount()

	<-editor.Preload(ctx)
	if err := editor.Err(); err != nil {
		return explainAPIError(err)
	}

	input := editor.Input()
	if !readNoteFlags(cmd, &input) {
		if err := noteForm("Update Note", &input).Run(); err != nil {
			return fmt.Errorf("update cancelled: %w", err)
		}
	}

	if _, err := editor.Submit(ctx, nav, input); err != nil {
		return explainAPIError(err)
	}

	fmt.Println(successStyle.Render("Note updated"))
	return nil
}

func runNotesDelete(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		confirmed := false
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Are you sure you want to delete this note?").
					Affirmative("Delete").
					Negative("Cancel").
					Value(&confirmed),
			),
		).Run()
		if err != nil || !confirmed {
			fmt.Println(infoStyle.Render("Nothing deleted"))
			return nil
		}
	}

	ctx, cleanup := common.WithInterrupt(cmd.Context())
	defer cleanup()

	page := pages.NewAllNotes(client, sessionStore)
	if err := page.Delete(ctx, args[0]); err != nil {
		return explainAPIError(err)
	}

	fmt.Println(successStyle.Render("Note deleted"))
	return nav.Navigate(router.Path(router.Notes, nil))
}

func init() {
	for _, c := range []*cobra.Command{notesCmd, notesListCmd} {
		c.Flags().StringP("search", "s", "", "Only show notes whose title or content contains this text")
		c.Flags().String("filter", string(pages.FilterAll), "Visibility filter: all, public or private")
		c.Flags().String("sort", string(pages.SortNewest), "Sort order: newest, oldest, recently-updated, oldest-updated or title")
		c.Flags().StringP("output", "o", string(outputTable), "Output format: table, json or yaml")
		c.Flags().String("jq", "", "jq expression applied to the notes before printing")
	}

	for _, c := range []*cobra.Command{notesCreateCmd, notesUpdateCmd} {
		c.Flags().String("title", "", "Note title")
		c.Flags().String("content", "", "Note content")
		c.Flags().Bool("public", false, "Share the note in the community feed")
	}

	notesDeleteCmd.Flags().BoolP("yes", "y", false, "Delete without asking for confirmation")

	notesCmd.AddCommand(notesListCmd, notesCreateCmd, notesUpdateCmd, notesDeleteCmd)
	rootCmd.AddCommand(notesCmd)
}
