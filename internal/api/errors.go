package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoCredential = errors.New("not logged in")
)

// Error is a non-2xx response from the notes API.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if len(e.Message) == 0 {
		return fmt.Sprintf("api request failed: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api request failed: %d %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match a 401 response.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}
