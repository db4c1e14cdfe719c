package styles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/uptrace/bun"
)

// BunRepository persists styles with bun. Styles use numeric autoincrement
// identifiers so the queries are issued directly against the bun DB.
type BunRepository struct {
	db bun.IDB
}

// NewBunRepository creates a style repository over db.
func NewBunRepository(db bun.IDB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) Create(ctx context.Context, style *Style) (*Style, error) {
	record := cloneStyle(style)
	record.ID = 0
	if _, err := r.db.NewInsert().Model(record).Returning("*").Exec(ctx); err != nil {
		return nil, fmt.Errorf("style repository error: %w", err)
	}
	return record, nil
}

func (r *BunRepository) Update(ctx context.Context, style *Style) (*Style, error) {
	record := cloneStyle(style)
	result, err := r.db.NewUpdate().
		Model(record).
		Column("name", "styles", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("style repository error: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, &NotFoundError{Resource: "style", Key: strconv.FormatInt(style.ID, 10)}
	}
	return r.GetByID(ctx, record.ID)
}

func (r *BunRepository) GetByID(ctx context.Context, id int64) (*Style, error) {
	record := &Style{}
	err := r.db.NewSelect().Model(record).Where("?TableAlias.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, "style", strconv.FormatInt(id, 10))
	}
	return record, nil
}

func (r *BunRepository) ListByRevenueProgram(ctx context.Context, revenueProgramID int64) ([]*Style, error) {
	var records []*Style
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.revenue_program_id = ?", revenueProgramID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, "style", "")
	}
	return records, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
