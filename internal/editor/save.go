package editor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/internal/requestbody"
	"github.com/goliatone/go-donation-pages/internal/styles"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

// PageStore is the page storage collaborator. It accepts a multipart partial
// update and returns the full stored page.
type PageStore interface {
	UpdatePage(ctx context.Context, id uuid.UUID, body *requestbody.Body) (*pages.Page, error)
}

// StyleResolver persists a staged style and returns it with an identifier.
type StyleResolver interface {
	Resolve(ctx context.Context, revenueProgramID int64, staged styles.Style) (styles.Style, error)
}

// ValidationFailure reports required blocks missing from the main list.
type ValidationFailure struct {
	Report *blocks.MissingBlocksReport
}

func (e *ValidationFailure) Error() string {
	return e.Report.Err().Error()
}

func (e *ValidationFailure) Unwrap() error {
	return e.Report.Err()
}

// SaveOptions controls optional screenshot capture during a save.
type SaveOptions struct {
	ScreenshotBaseName string
	Screenshot         bool
}

// SaverOption configures a Saver.
type SaverOption func(*Saver)

// WithValidator sets the required-block validator.
func WithValidator(validator *blocks.Validator) SaverOption {
	return func(s *Saver) {
		if validator != nil {
			s.validator = validator
		}
	}
}

// WithStyleResolver sets the style resource coordinator.
func WithStyleResolver(resolver StyleResolver) SaverOption {
	return func(s *Saver) {
		s.styles = resolver
	}
}

// WithRasterizer enables screenshot capture.
func WithRasterizer(rasterizer requestbody.Rasterizer) SaverOption {
	return func(s *Saver) {
		s.rasterizer = rasterizer
	}
}

// WithSaverClock overrides the timestamp source.
func WithSaverClock(clock func() time.Time) SaverOption {
	return func(s *Saver) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithSaverLogger attaches a logger.
func WithSaverLogger(logger interfaces.Logger) SaverOption {
	return func(s *Saver) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Saver runs the save pipeline for an edit session: validate, persist
// styles, serialize, send, rebase.
type Saver struct {
	store      PageStore
	validator  *blocks.Validator
	styles     StyleResolver
	rasterizer requestbody.Rasterizer
	now        func() time.Time
	logger     interfaces.Logger
}

// NewSaver constructs a Saver around the page store.
func NewSaver(store PageStore, opts ...SaverOption) *Saver {
	s := &Saver{
		store:     store,
		validator: blocks.NewValidator(nil, blocks.Plan{}),
		now:       time.Now,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists the staged changes of session. Validation failures return a
// *ValidationFailure before any I/O. Style failures return *styles.SaveError
// and leave the changes staged. On success the session is rebased onto the
// stored page.
func (s *Saver) Save(ctx context.Context, session *Session, opts SaveOptions) (*pages.Page, error) {
	if s.store == nil {
		return nil, ErrPageStoreNeeded
	}
	if !session.beginSave() {
		return nil, ErrSaveInProgress
	}
	defer session.endSave()

	if !session.HasChanges() {
		return nil, ErrNothingToSave
	}

	preview := session.Preview()
	logger := logging.WithPageContext(s.logger, preview.ID.String(), preview.RevenueProgram.Slug, "save")

	if report := s.validator.Validate(preview.Elements); report != nil {
		logger.Warn("editor.save.invalid", "missing", report.Missing)
		return nil, &ValidationFailure{Report: report}
	}

	now := s.now()
	logger.Info("editor.save.start", "published", preview.IsPublished(now), "state", string(preview.PublishState(now)))

	changes := session.Changes()
	if staged, ok := changes.Styles.Value(); ok {
		if s.styles == nil {
			return nil, &styles.SaveError{Op: "resolve", Err: styles.ErrStoreRequired}
		}
		resolved, err := s.styles.Resolve(ctx, preview.RevenueProgram.ID, staged)
		if err != nil {
			logger.Error("editor.save.styles_failed", "error", err)
			return nil, err
		}
		session.SetChange(pages.Update{Styles: pages.Set(resolved)})
		changes = session.Changes()
	}

	screenshot := requestbody.ScreenshotRequest{Now: s.now}
	if opts.Screenshot {
		document, err := s.validator.Registry().RenderDocument(preview.Name, preview.Elements, preview.SidebarElements)
		if err != nil {
			return nil, err
		}
		screenshot.BaseName = opts.ScreenshotBaseName
		screenshot.Source = document
		screenshot.Rasterizer = s.rasterizer
	}

	body, err := requestbody.ToRequestBody(ctx, changes, screenshot)
	if err != nil {
		logger.Error("editor.save.serialize_failed", "error", err)
		return nil, err
	}

	saved, err := s.store.UpdatePage(ctx, preview.ID, body)
	if err != nil {
		logger.Error("editor.save.failed", "error", err)
		return nil, err
	}
	session.Rebase(*saved)
	logger.Info("editor.save.done", "keys", changes.Keys())
	return saved, nil
}
