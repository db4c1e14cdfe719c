package blocks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/goliatone/go-donation-pages/internal/domain"
)

// Content is the type-dependent payload of a block. The set of variants is
// closed: AmountContent, FrequencyContent, ReasonContent, TextContent,
// ImageContent and FieldsContent.
type Content interface {
	cloneContent() Content
}

// AmountContent configures the contribution amount selector.
type AmountContent struct {
	Options    map[domain.Interval][]float64 `json:"options"`
	Defaults   map[domain.Interval]float64   `json:"defaults,omitempty"`
	AllowOther bool                          `json:"allowOther"`
}

func (c AmountContent) cloneContent() Content {
	cloned := AmountContent{AllowOther: c.AllowOther, Defaults: maps.Clone(c.Defaults)}
	if c.Options != nil {
		cloned.Options = make(map[domain.Interval][]float64, len(c.Options))
		for interval, amounts := range c.Options {
			cloned.Options[interval] = slices.Clone(amounts)
		}
	}
	return cloned
}

// FrequencyOption is a single selectable cadence.
type FrequencyOption struct {
	Value       domain.Interval `json:"value"`
	DisplayName string          `json:"displayName,omitempty"`
	IsDefault   bool            `json:"isDefault"`
}

// FrequencyContent lists the cadences a contributor can choose from.
type FrequencyContent []FrequencyOption

func (c FrequencyContent) cloneContent() Content {
	return slices.Clone(c)
}

// Default returns the option flagged as default, if any.
func (c FrequencyContent) Default() (FrequencyOption, bool) {
	for _, option := range c {
		if option.IsDefault {
			return option, true
		}
	}
	return FrequencyOption{}, false
}

// ReasonContent configures the reason for giving and tribute prompts.
type ReasonContent struct {
	AskReason     bool     `json:"askReason"`
	AskHonoree    bool     `json:"askHonoree"`
	AskInMemoryOf bool     `json:"askInMemoryOf"`
	Reasons       []string `json:"reasons,omitempty"`
}

func (c ReasonContent) cloneContent() Content {
	c.Reasons = slices.Clone(c.Reasons)
	return c
}

// TextContent is free text. Rich text blocks hold markdown.
type TextContent string

func (c TextContent) cloneContent() Content {
	return c
}

// ImageContent holds either a reference to an already persisted image or a
// new upload. A reference is never re-uploaded.
type ImageContent struct {
	Ref    string
	Upload *domain.Upload
}

func (c ImageContent) cloneContent() Content {
	return ImageContent{Ref: c.Ref, Upload: c.Upload.Clone()}
}

// Persisted reports whether the image only references a stored file.
func (c ImageContent) Persisted() bool {
	return c.Upload.Empty() && c.Ref != ""
}

// MarshalJSON writes a persisted reference as a string. Uploads never travel
// inside JSON, so an upload (or an empty image) is written as an empty object.
func (c ImageContent) MarshalJSON() ([]byte, error) {
	if c.Upload.Empty() && c.Ref != "" {
		return json.Marshal(c.Ref)
	}
	return []byte("{}"), nil
}

// UnmarshalJSON accepts a string reference or an object placeholder.
func (c *ImageContent) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var ref string
		if err := json.Unmarshal(trimmed, &ref); err != nil {
			return err
		}
		*c = ImageContent{Ref: ref}
		return nil
	}
	*c = ImageContent{}
	return nil
}

// FieldsContent is an open configuration map used by blocks whose editors
// only toggle sub-fields (donor info, address, payment, benefits, swag).
type FieldsContent map[string]any

func (c FieldsContent) cloneContent() Content {
	if c == nil {
		return FieldsContent(nil)
	}
	return FieldsContent(cloneValue(map[string]any(c)).(map[string]any))
}

// MarshalJSON writes nil maps as an empty object.
func (c FieldsContent) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(c))
}

var errContentShape = errors.New("blocks: content does not match block type")

// DecodeContent decodes a raw JSON payload into the variant for t. A missing
// or null payload decodes to nil content.
func DecodeContent(t Type, raw json.RawMessage) (Content, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	switch t {
	case TypeAmount:
		var content AmountContent
		return decodeInto(trimmed, &content)
	case TypeFrequency:
		var content FrequencyContent
		return decodeInto(trimmed, &content)
	case TypeReason:
		var content ReasonContent
		return decodeInto(trimmed, &content)
	case TypeRichText:
		var content TextContent
		return decodeInto(trimmed, &content)
	case TypeImage:
		var content ImageContent
		return decodeInto(trimmed, &content)
	case TypeDonorInfo, TypeDonorAddress, TypePayment, TypeBenefits, TypeSwag:
		var content FieldsContent
		return decodeInto(trimmed, &content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

func decodeInto[T Content](raw []byte, target *T) (Content, error) {
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("%w: %v", errContentShape, err)
	}
	return *target, nil
}

// MergeContent overlays a partial change onto current content. Struct and
// list variants are replaced wholesale; FieldsContent merges key-wise.
func MergeContent(current, change Content) Content {
	if change == nil {
		return current
	}
	base, ok := current.(FieldsContent)
	patch, patchOK := change.(FieldsContent)
	if !ok || !patchOK {
		return change.cloneContent()
	}
	merged := make(FieldsContent, len(base)+len(patch))
	for key, value := range base {
		merged[key] = cloneValue(value)
	}
	for key, value := range patch {
		merged[key] = cloneValue(value)
	}
	return merged
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}
