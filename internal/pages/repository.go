package pages

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists donation pages.
type Repository interface {
	Create(ctx context.Context, record *Page) (*Page, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, slug string) (*Page, error)
	List(ctx context.Context) ([]*Page, error)
	Update(ctx context.Context, record *Page) (*Page, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

func clonePage(page *Page) *Page {
	if page == nil {
		return nil
	}
	cloned := page.Clone()
	return &cloned
}
