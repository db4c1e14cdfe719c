package styles

import (
	"maps"
	"time"

	"github.com/uptrace/bun"
)

// Style is an independently persisted visual theme referenced by pages. A
// style without an ID has not been created yet.
type Style struct {
	bun.BaseModel `bun:"table:styles,alias:st"`

	ID               int64          `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name             string         `bun:"name,notnull" json:"name"`
	RevenueProgramID int64          `bun:"revenue_program_id,notnull" json:"revenue_program"`
	Styles           map[string]any `bun:"styles,type:jsonb" json:"styles"`
	CreatedAt        time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created"`
	UpdatedAt        time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"modified"`
}

// IsNew reports whether the style still needs to be created.
func (s Style) IsNew() bool {
	return s.ID == 0
}

// Clone returns a copy with an independent styles map.
func (s Style) Clone() Style {
	cloned := s
	cloned.Styles = maps.Clone(s.Styles)
	return cloned
}

// CreateStyleRequest captures the fields needed to persist a new style.
type CreateStyleRequest struct {
	Name             string         `json:"name"`
	RevenueProgramID int64          `json:"revenue_program"`
	Styles           map[string]any `json:"styles"`
}

// UpdateStyleRequest replaces the mutable fields of an existing style.
type UpdateStyleRequest struct {
	ID     int64          `json:"id"`
	Name   string         `json:"name"`
	Styles map[string]any `json:"styles"`
}
