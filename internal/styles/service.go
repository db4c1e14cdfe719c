package styles

import (
	"context"
	"maps"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

// Store is the style storage collaborator: create and update a style
// resource scoped to a revenue program. Both the local Service and the HTTP
// client implement it.
type Store interface {
	Create(ctx context.Context, req CreateStyleRequest) (*Style, error)
	Update(ctx context.Context, req UpdateStyleRequest) (*Style, error)
}

// Service exposes style management on top of a Repository.
type Service interface {
	Store
	Get(ctx context.Context, id int64) (*Style, error)
	ListForRevenueProgram(ctx context.Context, revenueProgramID int64) ([]*Style, error)
}

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithLogger attaches a logger to the service.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	repo   Repository
	now    func() time.Time
	logger interfaces.Logger
}

// NewService constructs a style service.
func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks the create request.
func (r CreateStyleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.By(notBlank(ErrNameRequired))),
		validation.Field(&r.RevenueProgramID, validation.Required.Error(ErrRevenueProgramRequired.Error())),
	)
}

// Validate checks the update request.
func (r UpdateStyleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required.Error(ErrIDRequired.Error())),
	)
}

func notBlank(err error) validation.RuleFunc {
	return func(value any) error {
		if text, _ := value.(string); strings.TrimSpace(text) == "" {
			return err
		}
		return nil
	}
}

func (s *service) Create(ctx context.Context, req CreateStyleRequest) (*Style, error) {
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	if err := req.Validate(); err != nil {
		return nil, goerrors.FromOzzoValidation(err, "invalid style")
	}
	now := s.now().UTC()
	record, err := s.repo.Create(ctx, &Style{
		Name:             strings.TrimSpace(req.Name),
		RevenueProgramID: req.RevenueProgramID,
		Styles:           maps.Clone(req.Styles),
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		s.logger.Error("styles.create.failed", "revenue_program", req.RevenueProgramID, "error", err)
		return nil, err
	}
	s.logger.Debug("styles.created", "style_id", record.ID, "revenue_program", record.RevenueProgramID)
	return record, nil
}

func (s *service) Update(ctx context.Context, req UpdateStyleRequest) (*Style, error) {
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	if err := req.Validate(); err != nil {
		return nil, goerrors.FromOzzoValidation(err, "invalid style")
	}
	existing, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		existing.Name = name
	}
	if req.Styles != nil {
		existing.Styles = maps.Clone(req.Styles)
	}
	existing.UpdatedAt = s.now().UTC()

	record, err := s.repo.Update(ctx, existing)
	if err != nil {
		s.logger.Error("styles.update.failed", "style_id", req.ID, "error", err)
		return nil, err
	}
	s.logger.Debug("styles.updated", "style_id", record.ID)
	return record, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Style, error) {
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListForRevenueProgram(ctx context.Context, revenueProgramID int64) ([]*Style, error) {
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	return s.repo.ListByRevenueProgram(ctx, revenueProgramID)
}
