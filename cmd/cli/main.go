package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/thinkpad-online/notes/internal/api"
	"github.com/thinkpad-online/notes/internal/config"
	"github.com/thinkpad-online/notes/internal/preferences"
	"github.com/thinkpad-online/notes/internal/router"
	"github.com/thinkpad-online/notes/internal/sessions"
	"github.com/thinkpad-online/notes/internal/storage"
)

// Global configuration instance
var cfg *config.Config

// Process wide state, built once the configuration is loaded
var (
	sessionStore *sessions.SessionManager
	prefs        *preferences.Preferences
	client       *api.Client
	nav          *router.Router
	watchers     []*storage.Watcher
	stopWatching context.CancelFunc
)

// loadConfig loads the configuration based on the --config flag or default locations
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, err := cmd.Flags().GetString("config")

	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	return config.Load(configFile)
}

func preRunConfigE(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = loadConfig(cmd)

	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// check if verbose flag is set
	verbose, err := cmd.Flags().GetBool("verbose")
	if err == nil && verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// Get the api endpoint override from the flag
	endpoint, err := cmd.Flags().GetString("api")
	if err == nil && len(endpoint) > 0 {
		if err := cfg.SetAPIEndpoint(endpoint); err != nil {
			return fmt.Errorf("failed to set api endpoint: %w", err)
		}
	}

	if err := openState(cmd.Context()); err != nil {
		return err
	}

	applyTheme(prefs.DarkMode())
	return nil
}

// openState opens the session and preference directories and starts
// watching them for changes made by other thinkpad processes.
func openState(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	sessionDir, err := storage.NewDir(cfg.GetSessionPath())
	if err != nil {
		return fmt.Errorf("failed to open session state: %w", err)
	}

	preferencesDir, err := storage.NewDir(cfg.GetPreferencesPath())
	if err != nil {
		return fmt.Errorf("failed to open preferences: %w", err)
	}

	var ctx context.Context
	ctx, stopWatching = context.WithCancel(parent)

	sessionWatcher, err := sessionDir.Watch(ctx, cfg.GetDebounce())
	if err != nil {
		stopWatching()
		return fmt.Errorf("failed to watch session state: %w", err)
	}

	preferencesWatcher, err := preferencesDir.Watch(ctx, cfg.GetDebounce())
	if err != nil {
		sessionWatcher.Close()
		stopWatching()
		return fmt.Errorf("failed to watch preferences: %w", err)
	}

	watchers = []*storage.Watcher{sessionWatcher, preferencesWatcher}

	sessionStore = sessions.NewSessionManager(sessionDir, sessionWatcher)
	prefs = preferences.New(preferencesDir, preferencesWatcher)

	client = api.NewClient(cfg.GetAPIUrl(), cfg.GetTimeout(), func() string {
		return sessionStore.Read().Credential
	})

	nav = router.New(func() bool {
		return sessionStore.Read().Present()
	})

	logrus.WithFields(logrus.Fields{
		"api":     cfg.GetAPIUrl(),
		"session": sessionDir.Path(),
	}).Debugln("Opened local state")

	return nil
}

func postRunCleanup(_ *cobra.Command, _ []string) {
	for _, w := range watchers {
		if err := w.Close(); err != nil {
			logrus.WithError(err).Debugln("Failed to close watcher")
		}
	}
	watchers = nil

	if stopWatching != nil {
		stopWatching()
	}
}

// requireSession fails commands that need a logged in user.
func requireSession(_ *cobra.Command, _ []string) error {
	if !sessionStore.Read().Present() {
		return errNotLoggedIn
	}
	return nil
}

var errNotLoggedIn = errors.New("you must login first. Run 'thinkpad login'")

// explainAPIError turns an expired or rejected credential into a hint.
func explainAPIError(err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		return fmt.Errorf("%w. Your session may have expired, run 'thinkpad login' again", err)
	}
	if errors.Is(err, api.ErrNoCredential) {
		return errNotLoggedIn
	}
	return err
}

var rootCmd = &cobra.Command{
	Use:   "thinkpad",
	Short: "ThinkPad - write, organise and share notes from your terminal",
	Long: `ThinkPad is a terminal client for the ThinkPad notes service.

Sign up, log in, and manage your notes. Every running thinkpad process shares
one session: logging in or out in one terminal is picked up by the others.

Run without a command to open the interactive shell.`,
	PersistentPreRunE: preRunConfigE,
	PersistentPostRun: postRunCleanup,
	SilenceUsage:      true,
	SilenceErrors:     true,
	RunE:              runShell,
}

func init() {

	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $HOME/.config/thinkpad/config.yaml)")
	rootCmd.PersistentFlags().String("api", "", "Override the notes API endpoint (e.g., http://localhost:5001)")

}

func GetCommandOptions() *cobra.Command {
	return rootCmd
}

// Execute runs the root command and renders any error in the error style.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
	}
	return err
}
