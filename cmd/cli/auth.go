package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/thinkpad-online/notes/internal/common"
	"github.com/thinkpad-online/notes/internal/models"
	"github.com/thinkpad-online/notes/internal/sessions"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to your ThinkPad account",
	Long:  "Authenticates with the notes API and stores the session for every thinkpad process on this machine",
	RunE:  runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a ThinkPad account",
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored session",
	RunE:  runLogout,
}

func validateEmail(s string) error {
	if !common.IsValidEmail(strings.TrimSpace(s)) {
		return fmt.Errorf("please enter a valid email address")
	}
	return nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if len(strings.TrimSpace(s)) == 0 {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	if len(email) == 0 || len(password) == 0 {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Email").
					Placeholder("you@example.com").
					Value(&email).
					Validate(validateEmail),
				huh.NewInput().
					Title("Password").
					EchoMode(huh.EchoModePassword).
					Value(&password).
					Validate(required("password")),
			).Title("Welcome Back"),
		)

		if err := form.Run(); err != nil {
			return fmt.Errorf("login cancelled: %w", err)
		}
	}

	if err := validateEmail(email); err != nil {
		return err
	}

	ctx, cleanup := common.WithInterrupt(cmd.Context())
	defer cleanup()

	response, err := client.Login(ctx, models.LoginRequest{
		Email:    strings.TrimSpace(email),
		Password: password,
	})
	if err != nil {
		logrus.WithError(err).Debugln("Login request failed")
		return fmt.Errorf("login failed: %w", err)
	}

	if err := sessions.Login(sessionStore, nav, response); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Login successful!"))
	fmt.Printf("Welcome back, %s\n", sessionStore.Read().Projection().DisplayName)
	fmt.Println()

	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	if len(username) == 0 || len(email) == 0 || len(password) == 0 {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Full Name").
					Placeholder("John Doe").
					Value(&username).
					Validate(required("name")),
				huh.NewInput().
					Title("Email").
					Placeholder("you@example.com").
					Value(&email).
					Validate(validateEmail),
				huh.NewInput().
					Title("Password").
					EchoMode(huh.EchoModePassword).
					Value(&password).
					Validate(required("password")),
			).Title("Create Your Account"),
		)

		if err := form.Run(); err != nil {
			return fmt.Errorf("signup cancelled: %w", err)
		}
	}

	if err := validateEmail(email); err != nil {
		return err
	}

	ctx, cleanup := common.WithInterrupt(cmd.Context())
	defer cleanup()

	_, err := client.Signup(ctx, models.SignupRequest{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Signup successful! You can now log in."))
	fmt.Println()

	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if !sessionStore.Read().Present() {
		fmt.Println(infoStyle.Render("You are not logged in"))
		return nil
	}

	if err := sessions.Logout(sessionStore, nav); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	fmt.Println(successStyle.Render("Logged out"))
	return nil
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password")

	signupCmd.Flags().String("username", "", "Display name")
	signupCmd.Flags().String("email", "", "Account email")
	signupCmd.Flags().String("password", "", "Account password")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
}
