package sessions

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/thinkpad-online/notes/internal/models"
	"github.com/thinkpad-online/notes/internal/router"
)

// Login installs the session from a successful login response and moves to
// the authenticated landing route. Write announces the change itself, so
// every mounted view is up to date before navigation happens.
func Login(store Store, nav router.Navigator, resp *models.AuthResponse) error {

	if resp == nil || len(resp.Token) == 0 {
		return ErrMissingCredential
	}

	if err := store.Write(resp.User, resp.Token); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user": resp.User.ID,
	}).Infoln("Logged in")

	return nav.Navigate(router.Path(router.Dashboard, nil))
}

// Logout clears the session and returns to the public landing route.
func Logout(store Store, nav router.Navigator) error {

	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	logrus.Infoln("Logged out")

	return nav.Navigate(router.Path(router.Home, nil))
}
