package blocks

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Type is the closed set of content block kinds a donation page can hold.
type Type string

const (
	TypeAmount       Type = "amount"
	TypeFrequency    Type = "frequency"
	TypeReason       Type = "reason"
	TypeDonorInfo    Type = "donor-info"
	TypeDonorAddress Type = "donor-address"
	TypeRichText     Type = "rich-text"
	TypeImage        Type = "image"
	TypePayment      Type = "payment"
	TypeBenefits     Type = "benefits"
	TypeSwag         Type = "swag"
)

var allTypes = []Type{
	TypeAmount,
	TypeFrequency,
	TypeReason,
	TypeDonorInfo,
	TypeDonorAddress,
	TypeRichText,
	TypeImage,
	TypePayment,
	TypeBenefits,
	TypeSwag,
}

// AllTypes lists every block type in palette order.
func AllTypes() []Type {
	return slices.Clone(allTypes)
}

// ParseType maps a raw tag onto a known Type.
func ParseType(value string) (Type, error) {
	candidate := Type(strings.TrimSpace(value))
	if !candidate.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, value)
	}
	return candidate, nil
}

// Valid reports whether t belongs to the closed set.
func (t Type) Valid() bool {
	return slices.Contains(allTypes, t)
}

// Block is a single typed unit of page content.
type Block struct {
	UUID           string   `json:"uuid"`
	Type           Type     `json:"type"`
	Content        Content  `json:"content"`
	RequiredFields []string `json:"requiredFields"`
}

// NewUUID generates an identifier for a new block.
func NewUUID() string {
	return uuid.NewString()
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	cloned := b
	if b.Content != nil {
		cloned.Content = b.Content.cloneContent()
	}
	if b.RequiredFields != nil {
		cloned.RequiredFields = slices.Clone(b.RequiredFields)
	}
	return cloned
}

// HasUpload reports whether the block carries a new image attachment.
func (b Block) HasUpload() bool {
	image, ok := b.Content.(ImageContent)
	return ok && !image.Upload.Empty()
}

// MarshalJSON always emits requiredFields as a list.
func (b Block) MarshalJSON() ([]byte, error) {
	type wire struct {
		UUID           string   `json:"uuid"`
		Type           Type     `json:"type"`
		Content        Content  `json:"content"`
		RequiredFields []string `json:"requiredFields"`
	}
	fields := b.RequiredFields
	if fields == nil {
		fields = []string{}
	}
	return json.Marshal(wire{UUID: b.UUID, Type: b.Type, Content: b.Content, RequiredFields: fields})
}

// UnmarshalJSON decodes the content payload into the variant matching the
// block type.
func (b *Block) UnmarshalJSON(data []byte) error {
	var wire struct {
		UUID           string          `json:"uuid"`
		Type           string          `json:"type"`
		Content        json.RawMessage `json:"content"`
		RequiredFields []string        `json:"requiredFields"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	blockType, err := ParseType(wire.Type)
	if err != nil {
		return err
	}
	content, err := DecodeContent(blockType, wire.Content)
	if err != nil {
		return fmt.Errorf("blocks: decode %s content for %s: %w", blockType, wire.UUID, err)
	}
	*b = Block{
		UUID:           wire.UUID,
		Type:           blockType,
		Content:        content,
		RequiredFields: wire.RequiredFields,
	}
	return nil
}

// CloneList deep-copies a block list, preserving nil.
func CloneList(list []Block) []Block {
	if list == nil {
		return nil
	}
	out := make([]Block, len(list))
	for i, block := range list {
		out[i] = block.Clone()
	}
	return out
}

// IndexOf returns the position of the block with the given uuid, or -1.
func IndexOf(list []Block, id string) int {
	return slices.IndexFunc(list, func(block Block) bool { return block.UUID == id })
}

// DuplicateUUIDs lists identifiers that appear more than once in list.
func DuplicateUUIDs(list []Block) []string {
	seen := make(map[string]int, len(list))
	var dupes []string
	for _, block := range list {
		seen[block.UUID]++
		if seen[block.UUID] == 2 {
			dupes = append(dupes, block.UUID)
		}
	}
	return dupes
}
