package sessions

import (
	"errors"
	"fmt"
)

var ErrMissingCredential = errors.New("session credential is empty")

// SerializationError reports a session value that could not be encoded or
// decoded.
type SerializationError struct {
	Key string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("session %s: %v", e.Key, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
