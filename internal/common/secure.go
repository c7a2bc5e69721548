package common

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateSecureRandomString generates a cryptographically secure random string of the specified length
func GenerateSecureRandomString(length int) (string, error) {
	// base64 expands by 4/3, so read just enough bytes and trim
	byteLength := (length*3 + 3) / 4

	bytes := make([]byte, byteLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(bytes)[:length], nil
}
