package chatapi

import (
	"errors"
	"fmt"
)

// ErrMissingResponse is returned when a JSON reply has no "response" string.
var ErrMissingResponse = errors.New("reply has no response field")

// StatusError reports a non-2xx reply from the backend.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat endpoint returned %s", e.Status)
}

// IsStatus reports whether err is a *StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
