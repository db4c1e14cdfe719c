package blocks

import (
	"fmt"

	"github.com/goliatone/go-donation-pages/internal/domain"
	"github.com/goliatone/go-donation-pages/internal/validation"
)

// Renderer turns a block into an HTML fragment for previews.
type Renderer func(Block) (string, error)

// Descriptor is the capability record for a block type.
type Descriptor struct {
	Type        Type
	DisplayName string
	// Required blocks must appear at least once in a page's main list and
	// can never be removed from it.
	Required bool
	Schema   *validation.Schema
	Render   Renderer
}

// Registry maps every block type to its descriptor.
type Registry struct {
	descriptors map[Type]Descriptor
}

// NewRegistry builds a registry. Every type of the closed set must be covered
// exactly once.
func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	registry := &Registry{descriptors: make(map[Type]Descriptor, len(descriptors))}
	for _, descriptor := range descriptors {
		if !descriptor.Type.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, descriptor.Type)
		}
		if _, exists := registry.descriptors[descriptor.Type]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDescriptor, descriptor.Type)
		}
		if descriptor.Render == nil {
			descriptor.Render = renderFragment
		}
		registry.descriptors[descriptor.Type] = descriptor
	}
	for _, t := range allTypes {
		if _, ok := registry.descriptors[t]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrDescriptorMissing, t)
		}
	}
	return registry, nil
}

// DefaultRegistry returns the registry used by hosted donation pages.
func DefaultRegistry() *Registry {
	registry, err := NewRegistry(defaultDescriptors()...)
	if err != nil {
		panic(err)
	}
	return registry
}

// Descriptor returns the capability record for t.
func (r *Registry) Descriptor(t Type) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	descriptor, ok := r.descriptors[t]
	return descriptor, ok
}

// IsRequired reports whether t is flagged required.
func (r *Registry) IsRequired(t Type) bool {
	descriptor, ok := r.Descriptor(t)
	return ok && descriptor.Required
}

// RequiredTypes lists the required types in palette order.
func (r *Registry) RequiredTypes() []Type {
	var required []Type
	for _, t := range allTypes {
		if r.IsRequired(t) {
			required = append(required, t)
		}
	}
	return required
}

// DisplayName returns the editor label for t, falling back to the tag.
func (r *Registry) DisplayName(t Type) string {
	if descriptor, ok := r.Descriptor(t); ok && descriptor.DisplayName != "" {
		return descriptor.DisplayName
	}
	return string(t)
}

// ValidateContent checks the block content against the type schema.
func (r *Registry) ValidateContent(block Block) error {
	descriptor, ok := r.Descriptor(block.Type)
	if !ok {
		return fmt.Errorf("%w: %s", ErrDescriptorMissing, block.Type)
	}
	if block.Content == nil || descriptor.Schema == nil {
		return nil
	}
	if err := descriptor.Schema.ValidateValue(block.Content); err != nil {
		return fmt.Errorf("blocks: %s content for %s: %w", block.Type, block.UUID, err)
	}
	return nil
}

// Render renders a block through its descriptor.
func (r *Registry) Render(block Block) (string, error) {
	descriptor, ok := r.Descriptor(block.Type)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrDescriptorMissing, block.Type)
	}
	return descriptor.Render(block)
}

func defaultDescriptors() []Descriptor {
	intervals := make([]any, 0, len(domain.Intervals()))
	for _, interval := range domain.Intervals() {
		intervals = append(intervals, string(interval))
	}
	fieldsSchema := validation.MustCompile(map[string]any{"type": "object"})

	return []Descriptor{
		{
			Type:        TypeAmount,
			DisplayName: "Contribution Amount",
			Required:    true,
			Schema: validation.MustCompile(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"options": map[string]any{
						"type":          "object",
						"propertyNames": map[string]any{"enum": intervals},
						"additionalProperties": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "number", "minimum": 0},
						},
					},
					"defaults": map[string]any{
						"type":                 "object",
						"propertyNames":        map[string]any{"enum": intervals},
						"additionalProperties": map[string]any{"type": "number", "minimum": 0},
					},
					"allowOther": map[string]any{"type": "boolean"},
				},
			}),
		},
		{
			Type:        TypeFrequency,
			DisplayName: "Contribution Frequency",
			Required:    true,
			Schema: validation.MustCompile(map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"value"},
					"properties": map[string]any{
						"value":       map[string]any{"enum": intervals},
						"displayName": map[string]any{"type": "string"},
						"isDefault":   map[string]any{"type": "boolean"},
					},
				},
			}),
		},
		{
			Type:        TypeReason,
			DisplayName: "Reason for Giving",
			Schema: validation.MustCompile(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"reasons": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
			}),
		},
		{Type: TypeDonorInfo, DisplayName: "Contributor Info", Required: true, Schema: fieldsSchema},
		{Type: TypeDonorAddress, DisplayName: "Contributor Address", Schema: fieldsSchema},
		{
			Type:        TypeRichText,
			DisplayName: "Rich Text",
			Schema:      validation.MustCompile(map[string]any{"type": "string"}),
			Render:      renderRichText,
		},
		{
			Type:        TypeImage,
			DisplayName: "Image",
			Schema:      validation.MustCompile(map[string]any{"type": []any{"string", "object"}}),
			Render:      renderImage,
		},
		{Type: TypePayment, DisplayName: "Payment", Required: true, Schema: fieldsSchema},
		{Type: TypeBenefits, DisplayName: "Donor Benefits", Schema: fieldsSchema},
		{Type: TypeSwag, DisplayName: "Swag", Schema: fieldsSchema},
	}
}

