package platform

import (
	"errors"
	"fmt"
)

// ErrSessionExpired maps a 401 from any backend call. The auth layer turns
// it into a forced logout; cart state is never corrupted by it.
var ErrSessionExpired = errors.New("session expired")

// APIError is a non-401 rejection from the platform backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform api returned status %d", e.Status)
	}
	return fmt.Sprintf("platform api returned status %d: %s", e.Status, e.Message)
}
