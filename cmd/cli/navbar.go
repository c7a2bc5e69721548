package cli

import (
	"strings"

	"github.com/thinkpad-online/notes/internal/router"
	"github.com/thinkpad-online/notes/internal/sessions"
)

type navLink struct {
	label string
	route router.Route
}

var (
	publicLinks = []navLink{
		{"Home", router.Home},
		{"Community", router.Community},
	}
	sessionLinks = []navLink{
		{"Dashboard", router.Dashboard},
		{"My Notes", router.Notes},
		{"Create", router.Create},
	}
	guestLinks = []navLink{
		{"Login", router.Login},
		{"Signup", router.Signup},
	}
)

// renderNavbar draws the top bar for the given session projection. Links to
// protected pages only appear while authenticated.
func renderNavbar(projection sessions.Projection, dark bool, active router.Route) string {
	var b strings.Builder

	b.WriteString(brandStyle.Render("ThinkPad"))
	b.WriteString(" ")

	links := append([]navLink(nil), publicLinks...)
	if projection.Authenticated {
		links = append(links, sessionLinks...)
	}
	for _, link := range links {
		b.WriteString(renderLink(link, active))
	}

	b.WriteString(mutedStyle.Render(" | "))

	if projection.Authenticated {
		b.WriteString(avatarStyle.Render(projection.DisplayName))
		b.WriteString(navLinkStyle.Render("Logout"))
	} else {
		for _, link := range guestLinks {
			b.WriteString(renderLink(link, active))
		}
	}

	if dark {
		b.WriteString(navLinkStyle.Render("☾ dark"))
	} else {
		b.WriteString(navLinkStyle.Render("☀ light"))
	}

	return b.String()
}

func renderLink(link navLink, active router.Route) string {
	if link.route == active {
		return activeStyle.Render(link.label)
	}
	return navLinkStyle.Render(link.label)
}
