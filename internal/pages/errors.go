package pages

import (
	"errors"
	"fmt"
)

var (
	ErrRepositoryRequired                  = errors.New("pages: repository required")
	ErrNameRequired                        = errors.New("pages: name required")
	ErrSlugRequired                        = errors.New("pages: slug required")
	ErrSlugInvalid                         = errors.New("pages: slug contains invalid characters")
	ErrSlugExists                          = errors.New("pages: slug already exists")
	ErrRevenueProgramRequired              = errors.New("pages: revenue program required")
	ErrIDRequired                          = errors.New("pages: id required")
	ErrNoChanges                           = errors.New("pages: update has no changes")
	ErrDuplicateBlockUUID                  = errors.New("pages: duplicate block uuid")
	ErrDeletePublishedRequiresConfirmation = errors.New("pages: deleting a published page requires confirmation")
	ErrPageNotFound                        = errors.New("pages: page not found")
)

// NotFoundError is returned when a page cannot be located.
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
	return ErrPageNotFound
}
