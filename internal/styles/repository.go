package styles

import "context"

// Repository exposes persistence operations for styles.
type Repository interface {
	Create(ctx context.Context, style *Style) (*Style, error)
	Update(ctx context.Context, style *Style) (*Style, error)
	GetByID(ctx context.Context, id int64) (*Style, error)
	ListByRevenueProgram(ctx context.Context, revenueProgramID int64) ([]*Style, error)
}

func cloneStyle(style *Style) *Style {
	if style == nil {
		return nil
	}
	cloned := style.Clone()
	return &cloned
}
