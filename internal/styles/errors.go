package styles

import (
	"errors"
	"fmt"
)

var (
	ErrRepositoryRequired     = errors.New("styles: repository required")
	ErrNameRequired           = errors.New("styles: name required")
	ErrRevenueProgramRequired = errors.New("styles: revenue program required")
	ErrIDRequired             = errors.New("styles: id required")
	ErrStoreRequired          = errors.New("styles: store required")
	ErrStyleNotFound          = errors.New("styles: style not found")
)

// NotFoundError is returned when a style cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrStyleNotFound
}

// SaveError reports a failed create or update of a style resource. It is kept
// distinct from page save failures so callers can raise a notification that
// stays on screen until dismissed.
type SaveError struct {
	Op  string
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("styles: %s style failed: %v", e.Op, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// Persistent reports that the failure must not auto-dismiss.
func (e *SaveError) Persistent() bool {
	return true
}
