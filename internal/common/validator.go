package common

import (
	"net/mail"
	"net/url"
	"strings"
)

// IsValidEndpoint accepts absolute http(s) URLs with a host.
func IsValidEndpoint(endpoint string) bool {
	u, err := url.ParseRequestURI(endpoint)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && len(u.Host) > 0
}

func IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	// Reject "Name <addr>" forms, the API expects the bare address
	return err == nil && addr.Address == email
}
