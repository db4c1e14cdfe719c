package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/internal/permissions"
	"github.com/goliatone/go-donation-pages/internal/styles"
	"github.com/goliatone/go-donation-pages/internal/validation"
)

// ErrorResponse is the JSON error envelope. Fields maps a page field to its
// messages, matching the shape the editor renders inline.
type ErrorResponse struct {
	Error    string                       `json:"error"`
	Message  string                       `json:"message,omitempty"`
	TextCode string                       `json:"text_code,omitempty"`
	Fields   map[string][]string          `json:"fields,omitempty"`
	Issues   []validation.ValidationIssue `json:"issues,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: message})
}

// sentinelFields attributes plain domain errors to the page field they concern.
var sentinelFields = []struct {
	err   error
	field string
}{
	{pages.ErrNameRequired, "name"},
	{pages.ErrSlugRequired, "slug"},
	{pages.ErrSlugInvalid, "slug"},
	{pages.ErrSlugExists, "slug"},
	{pages.ErrDuplicateBlockUUID, "elements"},
	{styles.ErrNameRequired, "name"},
	{styles.ErrIDRequired, "styles"},
}

func mapError(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, ErrorResponse{Error: "unknown_error"}
	}

	if errors.Is(err, pages.ErrPageNotFound) || errors.Is(err, styles.ErrStyleNotFound) {
		return http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()}
	}

	if errors.Is(err, permissions.ErrPermissionDenied) {
		return http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: err.Error()}
	}

	if errors.Is(err, pages.ErrDeletePublishedRequiresConfirmation) {
		return http.StatusConflict, ErrorResponse{Error: "conflict", Message: err.Error(), TextCode: textCode(err)}
	}

	if fieldErrs, ok := goerrors.GetValidationErrors(err); ok && len(fieldErrs) > 0 {
		fields := make(map[string][]string, len(fieldErrs))
		for _, fieldErr := range fieldErrs {
			fields[fieldErr.Field] = append(fields[fieldErr.Field], fieldErr.Message)
		}
		return http.StatusBadRequest, ErrorResponse{
			Error:    "validation_failed",
			Message:  err.Error(),
			TextCode: textCode(err),
			Fields:   fields,
		}
	}

	for _, candidate := range sentinelFields {
		if errors.Is(err, candidate.err) {
			status := http.StatusBadRequest
			if candidate.err == pages.ErrSlugExists {
				status = http.StatusConflict
			}
			return status, ErrorResponse{
				Error:   "validation_failed",
				Message: err.Error(),
				Fields:  map[string][]string{candidate.field: {err.Error()}},
			}
		}
	}

	if errors.Is(err, validation.ErrSchemaValidation) || errors.Is(err, blocks.ErrUnknownType) {
		return http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
			Issues:  validation.Issues(err),
		}
	}

	if errors.Is(err, pages.ErrNoChanges) || errors.Is(err, pages.ErrIDRequired) {
		return http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	}
}

func textCode(err error) string {
	var typed *goerrors.Error
	if errors.As(err, &typed) {
		return typed.TextCode
	}
	return ""
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	return uuid.Parse(trimmed)
}

func parseInt64(value string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(value), 10, 64)
}

func parseBoolQuery(value string, defaultValue bool) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func requirePermission(w http.ResponseWriter, r *http.Request, permission string) bool {
	if err := permissions.Require(r.Context(), permission); err != nil {
		writeError(w, err)
		return false
	}
	return true
}
