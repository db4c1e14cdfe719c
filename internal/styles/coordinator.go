package styles

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

const (
	opCreate = "create"
	opUpdate = "update"
)

var errEmptyResult = errors.New("styles: store returned no style")

// Coordinator decides whether a staged style must be created or updated
// before a page update referencing it is sent.
type Coordinator struct {
	store  Store
	name   func() string
	logger interfaces.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithPlaceholderName overrides the generator used for unnamed new styles.
func WithPlaceholderName(generator func() string) CoordinatorOption {
	return func(c *Coordinator) {
		if generator != nil {
			c.name = generator
		}
	}
}

// WithCoordinatorLogger attaches a logger.
func WithCoordinatorLogger(logger interfaces.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCoordinator binds a coordinator to a style store.
func NewCoordinator(store Store, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:  store,
		name:   uuid.NewString,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve persists staged and returns the stored style, which always carries
// an identifier. A style without an ID is created for revenueProgramID; one
// with an ID is updated in place. Any failure is returned as *SaveError.
func (c *Coordinator) Resolve(ctx context.Context, revenueProgramID int64, staged Style) (Style, error) {
	if c == nil || c.store == nil {
		return Style{}, &SaveError{Op: opCreate, Err: ErrStoreRequired}
	}

	if staged.IsNew() {
		name := strings.TrimSpace(staged.Name)
		if name == "" {
			name = c.name()
		}
		c.logger.Debug("styles.resolve.create", "revenue_program", revenueProgramID, "name", name)
		created, err := c.store.Create(ctx, CreateStyleRequest{
			Name:             name,
			RevenueProgramID: revenueProgramID,
			Styles:           staged.Styles,
		})
		return c.result(opCreate, created, err)
	}

	c.logger.Debug("styles.resolve.update", "style_id", staged.ID)
	updated, err := c.store.Update(ctx, UpdateStyleRequest{
		ID:     staged.ID,
		Name:   staged.Name,
		Styles: staged.Styles,
	})
	return c.result(opUpdate, updated, err)
}

func (c *Coordinator) result(op string, style *Style, err error) (Style, error) {
	if err == nil && (style == nil || style.ID == 0) {
		err = errEmptyResult
	}
	if err != nil {
		c.logger.Error("styles.resolve.failed", "operation", op, "error", err)
		return Style{}, &SaveError{Op: op, Err: err}
	}
	return style.Clone(), nil
}
