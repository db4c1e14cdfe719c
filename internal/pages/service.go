package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/internal/styles"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

// Service manages donation pages and applies staged updates to them.
type Service interface {
	Create(ctx context.Context, req CreatePageRequest) (*Page, error)
	Get(ctx context.Context, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, slug string) (*Page, error)
	List(ctx context.Context) ([]*Page, error)
	ApplyUpdate(ctx context.Context, id uuid.UUID, update Update) (*Page, error)
	Publish(ctx context.Context, id uuid.UUID, at time.Time) (*Page, error)
	Delete(ctx context.Context, req DeletePageRequest) error
}

// StyleLookup resolves a style referenced by identifier.
type StyleLookup interface {
	Get(ctx context.Context, id int64) (*styles.Style, error)
}

// IDGenerator produces page identifiers.
type IDGenerator func() uuid.UUID

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

// WithIDGenerator overrides the identifier generator.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithAssetStore persists uploaded images during updates.
func WithAssetStore(store AssetStore) ServiceOption {
	return func(s *service) {
		s.assets = store
	}
}

// WithStyleLookup hydrates page styles from their identifier.
func WithStyleLookup(lookup StyleLookup) ServiceOption {
	return func(s *service) {
		s.styles = lookup
	}
}

// WithRegistry validates block content against the registry schemas.
func WithRegistry(registry *blocks.Registry) ServiceOption {
	return func(s *service) {
		s.registry = registry
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
	repo     Repository
	now      func() time.Time
	id       IDGenerator
	assets   AssetStore
	styles   StyleLookup
	registry *blocks.Registry
	logger   interfaces.Logger
}

// NewService constructs a page service.
func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		now:    time.Now,
		id:     uuid.New,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks the create request.
func (r CreatePageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.By(notBlank(ErrNameRequired))),
		validation.Field(&r.Slug, validation.By(notBlank(ErrSlugRequired))),
		validation.Field(&r.RevenueProgram, validation.By(func(value any) error {
			program, _ := value.(RevenueProgram)
			if program.ID == 0 {
				return ErrRevenueProgramRequired
			}
			return nil
		})),
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

func (s *service) Create(ctx context.Context, req CreatePageRequest) (*Page, error) {
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	if err := req.Validate(); err != nil {
		return nil, goerrors.FromOzzoValidation(err, "invalid page")
	}
	normalized, err := normalizeSlug(req.Slug)
	if err != nil {
		return nil, err
	}
	if err := s.checkBlocks(req.Elements, req.SidebarElements); err != nil {
		return nil, err
	}

	id := req.ID
	if id == uuid.Nil {
		id = s.id()
	}
	now := s.now().UTC()
	record := &Page{
		ID:              id,
		Name:            strings.TrimSpace(req.Name),
		Slug:            normalized,
		Heading:         req.Heading,
		Locale:          req.Locale,
		Elements:        blocks.CloneList(req.Elements),
		SidebarElements: blocks.CloneList(req.SidebarElements),
		RevenueProgram:  req.RevenueProgram,
		PaymentProvider: req.PaymentProvider,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	logging.WithPageContext(s.logger, created.ID.String(), created.RevenueProgram.Slug, "page.create").
		Info("page created", "slug", created.Slug)
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Page, error) {
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}
	page, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, page)
}

func (s *service) GetBySlug(ctx context.Context, value string) (*Page, error) {
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	if strings.TrimSpace(value) == "" {
		return nil, ErrSlugRequired
	}
	page, err := s.repo.GetBySlug(ctx, value)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, page)
}

func (s *service) List(ctx context.Context) ([]*Page, error) {
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for idx, record := range records {
		hydrated, err := s.hydrate(ctx, record)
		if err != nil {
			return nil, err
		}
		records[idx] = hydrated
	}
	return records, nil
}

// ApplyUpdate persists the staged update over the stored page. Uploaded
// images are stored first and their thumbnails recomputed; thumbnails sent by
// the caller are ignored.
func (s *service) ApplyUpdate(ctx context.Context, id uuid.UUID, update Update) (*Page, error) {
	if s.repo == nil {
		return nil, ErrRepositoryRequired
	}
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}
	update = update.Clone()
	update.GraphicThumbnail = Field[string]{}
	update.HeaderBgImageThumbnail = Field[string]{}
	update.HeaderLogoThumbnail = Field[string]{}
	if !update.HasChanges() {
		return nil, ErrNoChanges
	}

	base, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	logger := logging.WithPageContext(s.logger, id.String(), base.RevenueProgram.Slug, "page.update")

	if err := s.normalizeUpdate(&update); err != nil {
		return nil, err
	}
	if err := s.storeImages(ctx, id, &update); err != nil {
		return nil, err
	}
	if err := s.storeBlockImages(ctx, id, &update); err != nil {
		return nil, err
	}
	if style, ok := update.Styles.Value(); ok {
		if style.IsNew() {
			return nil, styles.ErrIDRequired
		}
		if s.styles != nil {
			stored, err := s.styles.Get(ctx, style.ID)
			if err != nil {
				return nil, err
			}
			update.Styles = Set(stored.Clone())
		}
	}

	next := update.Apply(*base)
	next.UpdatedAt = s.now().UTC()
	saved, err := s.repo.Update(ctx, &next)
	if err != nil {
		logger.Error("page update failed", "error", err)
		return nil, err
	}
	logger.Info("page updated", "keys", strings.Join(update.Keys(), ","), "published", saved.IsPublished(s.now()))
	return s.hydrate(ctx, saved)
}

// Publish sets the publish date of the page.
func (s *service) Publish(ctx context.Context, id uuid.UUID, at time.Time) (*Page, error) {
	if at.IsZero() {
		at = s.now()
	}
	return s.ApplyUpdate(ctx, id, Update{PublishedDate: Set(at.UTC())})
}

// Delete removes a page. Published pages are only removed when the request
// carries an explicit confirmation.
func (s *service) Delete(ctx context.Context, req DeletePageRequest) error {
	if s.repo == nil {
		return ErrRepositoryRequired
	}
	if req.ID == uuid.Nil {
		return ErrIDRequired
	}
	page, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	if page.IsPublished(s.now()) && !req.Confirmed {
		return goerrors.Wrap(ErrDeletePublishedRequiresConfirmation, goerrors.CategoryConflict, "page is live").
			WithTextCode("DELETE_PUBLISHED_PAGE")
	}
	if err := s.repo.Delete(ctx, req.ID); err != nil {
		return err
	}
	logging.WithPageContext(s.logger, req.ID.String(), page.RevenueProgram.Slug, "page.delete").
		Info("page deleted", "confirmed", req.Confirmed)
	return nil
}

func (s *service) normalizeUpdate(update *Update) error {
	if name, ok := update.Name.Value(); ok {
		if strings.TrimSpace(name) == "" {
			return ErrNameRequired
		}
		update.Name = Set(strings.TrimSpace(name))
	}
	if update.Name.Cleared() {
		return ErrNameRequired
	}
	if update.Slug.Cleared() {
		return ErrSlugRequired
	}
	if value, ok := update.Slug.Value(); ok {
		normalized, err := normalizeSlug(value)
		if err != nil {
			return err
		}
		update.Slug = Set(normalized)
	}
	main, _ := update.Elements.Value()
	sidebar, _ := update.SidebarElements.Value()
	return s.checkBlocks(main, sidebar)
}

func (s *service) checkBlocks(main, sidebar []blocks.Block) error {
	combined := append(blocks.CloneList(main), sidebar...)
	if duplicates := blocks.DuplicateUUIDs(combined); len(duplicates) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateBlockUUID, strings.Join(duplicates, ", "))
	}
	if s.registry == nil {
		return nil
	}
	for _, block := range combined {
		if err := s.registry.ValidateContent(block); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) storeImages(ctx context.Context, id uuid.UUID, update *Update) error {
	slots := []struct {
		key       string
		image     *Field[Image]
		thumbnail *Field[string]
	}{
		{KeyGraphic, &update.Graphic, &update.GraphicThumbnail},
		{KeyHeaderBgImage, &update.HeaderBgImage, &update.HeaderBgImageThumbnail},
		{KeyHeaderLogo, &update.HeaderLogo, &update.HeaderLogoThumbnail},
	}
	for _, slot := range slots {
		image, ok := slot.image.Value()
		switch {
		case slot.image.Cleared():
			*slot.thumbnail = Clear[string]()
		case ok && image.Pending():
			if s.assets == nil {
				return fmt.Errorf("pages: no asset store configured for %s", slot.key)
			}
			asset, err := s.assets.Put(ctx, id.String()+"/"+slot.key, image.Upload)
			if err != nil {
				return err
			}
			*slot.image = Set(ImageRef(asset.Ref))
			*slot.thumbnail = Set(asset.Thumbnail)
		case ok && image.Ref == "":
			*slot.image = Clear[Image]()
			*slot.thumbnail = Clear[string]()
		}
	}
	return nil
}

func (s *service) storeBlockImages(ctx context.Context, id uuid.UUID, update *Update) error {
	lists := []*Field[[]blocks.Block]{&update.Elements, &update.SidebarElements}
	for _, field := range lists {
		list, ok := field.Value()
		if !ok {
			continue
		}
		for idx, block := range list {
			if !block.HasUpload() {
				continue
			}
			if s.assets == nil {
				return fmt.Errorf("pages: no asset store configured for block %s", block.UUID)
			}
			content := block.Content.(blocks.ImageContent)
			asset, err := s.assets.Put(ctx, id.String()+"/blocks/"+block.UUID, content.Upload)
			if err != nil {
				return err
			}
			list[idx].Content = blocks.ImageContent{Ref: asset.Ref}
		}
		*field = Set(list)
	}
	return nil
}

func (s *service) hydrate(ctx context.Context, page *Page) (*Page, error) {
	if page == nil || s.styles == nil || page.StyleID == nil {
		return page, nil
	}
	style, err := s.styles.Get(ctx, *page.StyleID)
	if err != nil {
		if errors.Is(err, styles.ErrStyleNotFound) {
			logging.WithPageContext(s.logger, page.ID.String(), page.RevenueProgram.Slug, "page.hydrate").
				Warn("page references missing style", "style_id", *page.StyleID)
			page.Styles = nil
			return page, nil
		}
		return nil, err
	}
	cloned := style.Clone()
	page.Styles = &cloned
	return page, nil
}

func normalizeSlug(value string) (string, error) {
	normalized, err := slug.Normalize(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSlugInvalid, err)
	}
	if normalized == "" {
		return "", ErrSlugRequired
	}
	if !slug.IsValid(normalized) {
		return "", ErrSlugInvalid
	}
	return normalized, nil
}
