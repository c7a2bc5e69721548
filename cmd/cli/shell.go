package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/thinkpad-online/notes/internal/router"
	"github.com/thinkpad-online/notes/internal/sessions"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open the interactive shell",
	RunE:  runShell,
}

var errQuit = errors.New("quit")

// shellPrompt is a session-aware view: it follows logins and logouts made
// by this or any other thinkpad process.
type shellPrompt struct {
	mu     sync.Mutex
	prompt string
	view   *sessions.View
}

func mountPrompt(store sessions.Store) *shellPrompt {
	p := &shellPrompt{}
	p.view = sessions.Mount(store, p.render)
	return p
}

func (p *shellPrompt) render(projection sessions.Projection) {
	prompt := "thinkpad> "
	if projection.Authenticated {
		prompt = fmt.Sprintf("thinkpad (%s)> ", projection.DisplayName)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompt = prompt
}

func (p *shellPrompt) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prompt
}

func (p *shellPrompt) Close() {
	p.view.Unmount()
}

const shellHelp = `Commands:
  home, community                 public pages
  dashboard, notes [search]       your notes (login required)
  create, update <id>, delete <id>
  go <path>                       open a route, e.g. go /update/42
  back                            return to the previous page
  login, signup, logout
  theme [dark|light|toggle]
  status, logs [count], help, exit`

func runShell(cmd *cobra.Command, args []string) error {
	prompt := mountPrompt(sessionStore)
	defer prompt.Close()

	fmt.Println(renderNavbar(prompt.view.State(), prefs.DarkMode(), nav.Current().Route))
	fmt.Println(mutedStyle.Render("Type 'help' for commands"))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render(prompt.String()))

		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		err := executeShellLine(cmd.Context(), os.Stdout, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Println(errorStyle.Render("Error: ") + err.Error())
		}
	}
}

func executeShellLine(ctx context.Context, w io.Writer, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	command, rest := strings.ToLower(fields[0]), fields[1:]

	logrus.WithFields(logrus.Fields{
		"command": command,
		"args":    rest,
	}).Debugln("Shell command")

	switch command {
	case "exit", "quit":
		return errQuit
	case "help", "?":
		fmt.Fprintln(w, shellHelp)
		return nil
	case "go":
		if len(rest) != 1 {
			return fmt.Errorf("usage: go <path>")
		}
		return open(ctx, w, rest[0], nil)
	case "back":
		return show(ctx, w, nav.Back(), nil)
	case "home":
		return open(ctx, w, router.Path(router.Home, nil), nil)
	case "community":
		return open(ctx, w, router.Path(router.Community, nil), nil)
	case "dashboard":
		return open(ctx, w, router.Path(router.Dashboard, nil), nil)
	case "notes":
		return open(ctx, w, router.Path(router.Notes, nil), rest)
	case "create":
		return open(ctx, w, router.Path(router.Create, nil), nil)
	case "update":
		if len(rest) != 1 {
			return fmt.Errorf("usage: update <id>")
		}
		return open(ctx, w, router.Path(router.Update, map[string]string{"id": rest[0]}), nil)
	case "delete":
		if len(rest) != 1 {
			return fmt.Errorf("usage: delete <id>")
		}
		return runNotesDelete(notesDeleteCmd, rest)
	case "login":
		return open(ctx, w, router.Path(router.Login, nil), nil)
	case "signup":
		return open(ctx, w, router.Path(router.Signup, nil), nil)
	case "logout":
		return runLogout(logoutCmd, nil)
	case "theme":
		return runTheme(themeCmd, rest)
	case "status":
		return runStatus(statusCmd, nil)
	case "logs":
		return printLogs(w, rest)
	default:
		return fmt.Errorf("unknown command %q, type 'help' for a list", command)
	}
}

// open navigates to path and renders wherever the router ends up, which is
// the login page for protected routes while logged out.
func open(ctx context.Context, w io.Writer, path string, args []string) error {
	if err := nav.Navigate(path); err != nil {
		return err
	}
	return show(ctx, w, nav.Current(), args)
}

func show(ctx context.Context, w io.Writer, location router.Location, args []string) error {
	fmt.Fprintln(w, renderNavbar(sessionStore.Read().Projection(), prefs.DarkMode(), location.Route))
	fmt.Fprintln(w)

	switch location.Route {
	case router.Home:
		fmt.Fprintln(w, titleStyle.Render("Your thoughts, organised."))
		fmt.Fprintln(w, textStyle.Render("Write notes, keep them private or share them with the community."))
		return nil
	case router.Login:
		return runLogin(loginCmd, nil)
	case router.Signup:
		return runSignup(signupCmd, nil)
	case router.Dashboard:
		dashboardCmd.SetContext(ctx)
		return runDashboard(dashboardCmd, nil)
	case router.Notes:
		notesListCmd.SetContext(ctx)
		if len(args) > 0 {
			notesListCmd.Flags().Set("search", strings.Join(args, " "))
			defer notesListCmd.Flags().Set("search", "")
		}
		return runNotesList(notesListCmd, nil)
	case router.Create:
		notesCreateCmd.SetContext(ctx)
		return runNotesCreate(notesCreateCmd, nil)
	case router.Update:
		notesUpdateCmd.SetContext(ctx)
		return runNotesUpdate(notesUpdateCmd, []string{location.Params["id"]})
	case router.Community:
		communityCmd.SetContext(ctx)
		return runCommunity(communityCmd, nil)
	default:
		return fmt.Errorf("%w: %s", router.ErrUnknownRoute, location.Path)
	}
}

func printLogs(w io.Writer, args []string) error {
	count := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("usage: logs [count]")
		}
		count = n
	}

	entries := cfg.GetRecentLogs(count)
	if len(entries) == 0 {
		fmt.Fprintln(w, infoStyle.Render("No log entries"))
		return nil
	}

	for _, entry := range entries {
		fmt.Fprintf(w, "%s %-7s %s\n",
			mutedStyle.Render(entry.Time.Format("15:04:05")),
			strings.ToUpper(entry.Level.String()),
			entry.Message)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
