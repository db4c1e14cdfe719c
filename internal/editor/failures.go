package editor

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-donation-pages/internal/styles"
)

// FailureKind groups save failures by how the editor recovers from them.
type FailureKind string

const (
	FailureValidation  FailureKind = "validation"
	FailureStyleSave   FailureKind = "style_save"
	FailureFieldErrors FailureKind = "field_errors"
	FailureGeneric     FailureKind = "generic"
	FailureInternal    FailureKind = "internal"
)

// Mode is the editor mode to return to after a failure.
type Mode string

const (
	ModeEdit    Mode = "edit"
	ModePreview Mode = "preview"
)

// Failure describes how a save error should be presented.
type Failure struct {
	Kind        FailureKind
	Persistent  bool
	Messages    []string
	FieldErrors map[string][]string
	Mode        Mode
}

// Classify maps a save error to its presentation. A nil error yields the zero
// Failure.
func Classify(err error) Failure {
	if err == nil {
		return Failure{}
	}

	var validation *ValidationFailure
	if errors.As(err, &validation) {
		return Failure{
			Kind:     FailureValidation,
			Messages: append([]string(nil), validation.Report.Messages...),
			Mode:     ModeEdit,
		}
	}

	var styleErr *styles.SaveError
	if errors.As(err, &styleErr) {
		return Failure{
			Kind:       FailureStyleSave,
			Persistent: styleErr.Persistent(),
			Messages:   []string{"Your page styles could not be saved. Your changes are still staged."},
			Mode:       ModeEdit,
		}
	}

	if errors.Is(err, ErrBlockVanished) || errors.Is(err, ErrSaveInProgress) {
		return Failure{
			Kind:       FailureInternal,
			Persistent: true,
			Messages:   []string{err.Error()},
			Mode:       ModeEdit,
		}
	}

	if fieldErrors, ok := goerrors.GetValidationErrors(err); ok && len(fieldErrors) > 0 {
		byField := make(map[string][]string, len(fieldErrors))
		messages := make([]string, 0, len(fieldErrors))
		for _, fieldErr := range fieldErrors {
			byField[fieldErr.Field] = append(byField[fieldErr.Field], fieldErr.Message)
			messages = append(messages, fieldErr.Message)
		}
		return Failure{
			Kind:        FailureFieldErrors,
			Messages:    messages,
			FieldErrors: byField,
			Mode:        ModeEdit,
		}
	}

	return Failure{
		Kind:     FailureGeneric,
		Messages: []string{"The page could not be saved."},
		Mode:     ModePreview,
	}
}
