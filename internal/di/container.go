package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/client"
	pagescmd "github.com/goliatone/go-donation-pages/internal/commands/pages"
	"github.com/goliatone/go-donation-pages/internal/editor"
	apihttp "github.com/goliatone/go-donation-pages/internal/http"
	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/internal/logging/gologger"
	"github.com/goliatone/go-donation-pages/internal/logging/zerologger"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/internal/payments"
	"github.com/goliatone/go-donation-pages/internal/requestbody"
	"github.com/goliatone/go-donation-pages/internal/runtimeconfig"
	"github.com/goliatone/go-donation-pages/internal/screenshot"
	"github.com/goliatone/go-donation-pages/internal/storage"
	"github.com/goliatone/go-donation-pages/internal/styles"
	"github.com/goliatone/go-donation-pages/internal/templates"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

var (
	ErrTemplatesUnavailable = errors.New("di: no template filesystem configured")
	ErrProcessorRequired    = errors.New("di: payment processor is required for checkout")
)

// Container wires module dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	clock          func() time.Time

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	pageRepo  pages.Repository
	styleRepo styles.Repository
	assets    pages.AssetStore

	registry  *blocks.Registry
	validator *blocks.Validator
	fees      payments.FeeSchedule

	pageSvc  pages.Service
	styleSvc styles.Service

	remote      bool
	client      *client.Client
	pageStore   editor.PageStore
	styleStore  styles.Store
	coordinator *styles.Coordinator
	saver       *editor.Saver

	rasterizer requestbody.Rasterizer
	processor  payments.Processor
	checkout   *payments.Checkout

	api           *apihttp.API
	commands      *pagescmd.Handlers
	subscriptions []pagescmd.Subscription

	templateFS  fs.FS
	templateCfg templates.LoaderConfig
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB overrides the storage connection. The container does not close a
// database it did not open.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache provider used by page reads.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithClock overrides the time source shared by services and commands.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithPageService overrides the default page service binding.
func WithPageService(svc pages.Service) Option {
	return func(c *Container) {
		c.pageSvc = svc
	}
}

// WithStyleService overrides the default style service binding.
func WithStyleService(svc styles.Service) Option {
	return func(c *Container) {
		c.styleSvc = svc
	}
}

// WithAssetStore overrides the in-memory image store.
func WithAssetStore(store pages.AssetStore) Option {
	return func(c *Container) {
		c.assets = store
	}
}

// WithRegistry overrides the default block registry.
func WithRegistry(registry *blocks.Registry) Option {
	return func(c *Container) {
		c.registry = registry
	}
}

// WithRasterizer overrides the headless Chrome rasterizer.
func WithRasterizer(rasterizer requestbody.Rasterizer) Option {
	return func(c *Container) {
		c.rasterizer = rasterizer
	}
}

// WithPaymentProcessor supplies the processor behind Checkout.
func WithPaymentProcessor(processor payments.Processor) Option {
	return func(c *Container) {
		c.processor = processor
	}
}

// WithRemoteAPI routes editor saves and style writes through the HTTP client
// pointed at Config.API.BaseURL instead of the in-process services.
func WithRemoteAPI() Option {
	return func(c *Container) {
		c.remote = true
	}
}

// WithClient overrides the HTTP client used in remote mode.
func WithClient(cl *client.Client) Option {
	return func(c *Container) {
		c.client = cl
	}
}

// WithTemplates exposes page templates stored in filesystem.
func WithTemplates(filesystem fs.FS, cfg templates.LoaderConfig) Option {
	return func(c *Container) {
		c.templateFS = filesystem
		c.templateCfg = cfg
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		clock:    time.Now,
		cacheTTL: cacheTTL,
		fees: payments.FeeSchedule{
			NonprofitRate:      cfg.Fees.NonprofitRate,
			ForProfitRate:      cfg.Fees.ForProfitRate,
			FlatFee:            cfg.Fees.FlatFee,
			RecurringSurcharge: cfg.Fees.RecurringSurcharge,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	if err := c.configureBlocks(); err != nil {
		c.Close()
		return nil, err
	}
	c.configureServices()
	if err := c.configureEditor(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.configureScreenshots(); err != nil {
		c.Close()
		return nil, err
	}
	c.configureSaver()
	c.configureCheckout()
	c.configureHTTP()
	c.configureCommands()

	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	if !c.Config.Features.Logger {
		return nil
	}

	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: configure go-logger: %w", err)
		}
		c.loggerProvider = provider
	case "zerolog", "console":
		format := logCfg.Format
		if format == "" && strings.EqualFold(strings.TrimSpace(logCfg.Provider), "console") {
			format = "console"
		}
		provider, err := zerologger.NewProvider(zerologger.Config{
			Level:  logCfg.Level,
			Format: format,
		})
		if err != nil {
			return fmt.Errorf("di: configure zerolog: %w", err)
		}
		c.loggerProvider = provider
	}
	return nil
}

func (c *Container) configureStorage() error {
	if c.bunDB != nil || storage.IsMemory(c.Config.Storage.Provider) {
		return nil
	}
	ctx := context.Background()
	db, err := storage.Open(ctx, c.Config.Storage.Provider, c.Config.Storage.DSN)
	if err != nil {
		return err
	}
	if err := storage.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	c.bunDB = db
	c.ownsDB = true
	c.logger("donations.storage").Info("storage opened", "provider", c.Config.Storage.Provider)
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}
	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		c.pageRepo = pages.NewMemoryRepository()
		c.styleRepo = styles.NewMemoryRepository()
		return
	}
	if c.cacheService != nil {
		c.pageRepo = pages.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	} else {
		c.pageRepo = pages.NewBunRepository(c.bunDB)
	}
	c.styleRepo = styles.NewBunRepository(c.bunDB)
}

func (c *Container) configureBlocks() error {
	if c.registry == nil {
		c.registry = blocks.DefaultRegistry()
	}
	plan := blocks.Plan{Name: c.Config.Plan.Name}
	for _, raw := range c.Config.Plan.RequiredBlocks {
		blockType, err := blocks.ParseType(raw)
		if err != nil {
			return fmt.Errorf("di: plan required block %q: %w", raw, err)
		}
		plan.RequiredBlocks = append(plan.RequiredBlocks, blockType)
	}
	c.validator = blocks.NewValidator(c.registry, plan)
	return nil
}

func (c *Container) configureServices() {
	if c.assets == nil {
		c.assets = pages.NewMemoryAssetStore("/media")
	}
	if c.styleSvc == nil {
		c.styleSvc = styles.NewService(
			c.styleRepo,
			styles.WithClock(c.clock),
			styles.WithLogger(logging.StylesLogger(c.loggerProvider)),
		)
	}
	if c.pageSvc == nil {
		c.pageSvc = pages.NewService(
			c.pageRepo,
			pages.WithClock(c.clock),
			pages.WithAssetStore(c.assets),
			pages.WithStyleLookup(c.styleSvc),
			pages.WithRegistry(c.registry),
			pages.WithLogger(logging.PagesLogger(c.loggerProvider)),
		)
	}
}

func (c *Container) configureEditor() error {
	if c.remote {
		if c.client == nil {
			cl, err := client.New(
				c.Config.API.BaseURL,
				client.WithTimeout(c.Config.API.Timeout),
				client.WithLogger(c.logger("donations.client")),
			)
			if err != nil {
				return err
			}
			c.client = cl
		}
		c.pageStore = c.client
		c.styleStore = c.client
	} else {
		c.pageStore = newLocalPageStore(c.pageSvc, c.assets, logging.EditorLogger(c.loggerProvider))
		c.styleStore = c.styleSvc
	}

	c.coordinator = styles.NewCoordinator(
		c.styleStore,
		styles.WithCoordinatorLogger(logging.StylesLogger(c.loggerProvider)),
	)
	return nil
}

func (c *Container) configureScreenshots() error {
	if c.rasterizer == nil && c.Config.Features.Screenshots {
		shot := c.Config.Screenshot
		rasterizer, err := screenshot.NewChromeRasterizer(screenshot.Options{
			Width:    shot.Width,
			Height:   shot.Height,
			Timeout:  shot.Timeout,
			Headless: shot.Headless,
			Selector: shot.Selector,
		}, screenshot.WithLogger(c.logger("donations.screenshot")))
		if err != nil {
			return err
		}
		c.rasterizer = rasterizer
	}
	return nil
}

func (c *Container) configureSaver() {
	saverOpts := []editor.SaverOption{
		editor.WithValidator(c.validator),
		editor.WithStyleResolver(c.coordinator),
		editor.WithSaverClock(c.clock),
		editor.WithSaverLogger(logging.EditorLogger(c.loggerProvider)),
	}
	if c.rasterizer != nil {
		saverOpts = append(saverOpts, editor.WithRasterizer(c.rasterizer))
	}
	c.saver = editor.NewSaver(c.pageStore, saverOpts...)
}

func (c *Container) configureCheckout() {
	if c.processor == nil {
		return
	}
	c.checkout = payments.NewCheckout(
		c.processor,
		c.Config.Checkout.Origin,
		c.Config.Checkout.TokenKey,
		payments.WithCheckoutLogger(logging.PaymentsLogger(c.loggerProvider)),
	)
}

func (c *Container) configureHTTP() {
	if !c.Config.Features.HTTPAPI {
		return
	}
	c.api = apihttp.NewAPI(
		apihttp.WithPageService(c.pageSvc),
		apihttp.WithStyleService(c.styleSvc),
		apihttp.WithScreenshotStore(c.assets),
		apihttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	)
}

func (c *Container) configureCommands() {
	if !c.Config.Features.Commands {
		return
	}
	handlers := pagescmd.NewHandlers(c.pageSvc, logging.CommandsLogger(c.loggerProvider), c.clock)
	c.commands = &handlers
}

func (c *Container) logger(module string) interfaces.Logger {
	return logging.ModuleLogger(c.loggerProvider, module)
}

// LoggerProvider exposes the configured logger provider. It is nil when the
// logger feature is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// DB exposes the SQL connection, nil for memory storage.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// Registry returns the block registry.
func (c *Container) Registry() *blocks.Registry {
	return c.registry
}

// Validator returns the plan-aware block validator.
func (c *Container) Validator() *blocks.Validator {
	return c.validator
}

// PageService returns the configured page service.
func (c *Container) PageService() pages.Service {
	return c.pageSvc
}

// StyleService returns the configured style service.
func (c *Container) StyleService() styles.Service {
	return c.styleSvc
}

// AssetStore returns the image store backing uploads and screenshots.
func (c *Container) AssetStore() pages.AssetStore {
	return c.assets
}

// Coordinator returns the style coordinator used by the editor.
func (c *Container) Coordinator() *styles.Coordinator {
	return c.coordinator
}

// Saver returns the editor saver.
func (c *Container) Saver() *editor.Saver {
	return c.saver
}

// NewSession opens an edit session over page using the container registry.
func (c *Container) NewSession(page pages.Page) *editor.Session {
	return editor.NewSession(
		page,
		editor.WithRegistry(c.registry),
		editor.WithSessionLogger(logging.EditorLogger(c.loggerProvider)),
	)
}

// Client returns the HTTP client; nil unless remote mode is enabled.
func (c *Container) Client() *client.Client {
	return c.client
}

// Rasterizer returns the screenshot rasterizer, nil when disabled.
func (c *Container) Rasterizer() requestbody.Rasterizer {
	return c.rasterizer
}

// FeeSchedule returns the configured processor fee terms.
func (c *Container) FeeSchedule() payments.FeeSchedule {
	return c.fees
}

// Checkout returns the payment checkout.
func (c *Container) Checkout() (*payments.Checkout, error) {
	if c.checkout == nil {
		return nil, ErrProcessorRequired
	}
	return c.checkout, nil
}

// API returns the HTTP API, nil when the http_api feature is disabled.
func (c *Container) API() *apihttp.API {
	return c.api
}

// CommandHandlers returns the page command handlers, nil when the commands
// feature is disabled.
func (c *Container) CommandHandlers() *pagescmd.Handlers {
	return c.commands
}

// SubscribeCommands registers the command handlers with the dispatcher. It is
// a no-op when commands are disabled or already subscribed.
func (c *Container) SubscribeCommands() {
	if c.commands == nil || len(c.subscriptions) > 0 {
		return
	}
	c.subscriptions = c.commands.Subscribe()
}

// TemplateLoader returns a loader over the configured template filesystem.
func (c *Container) TemplateLoader() (*templates.Loader, error) {
	if c.templateFS == nil {
		return nil, ErrTemplatesUnavailable
	}
	return templates.NewLoader(c.templateFS, c.templateCfg, c.logger("donations.templates")), nil
}

// SeedTemplates loads every template and creates the missing pages for the
// revenue program.
func (c *Container) SeedTemplates(ctx context.Context, program pages.RevenueProgram, provider pages.PaymentProvider) ([]*pages.Page, error) {
	loader, err := c.TemplateLoader()
	if err != nil {
		return nil, err
	}
	loaded, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return templates.Seed(ctx, c.pageSvc, program, provider, loaded)
}

// Close releases subscriptions and the storage connection the container
// opened.
func (c *Container) Close() error {
	for _, sub := range c.subscriptions {
		sub.Unsubscribe()
	}
	c.subscriptions = nil
	if c.ownsDB && c.bunDB != nil {
		err := c.bunDB.Close()
		c.bunDB = nil
		return err
	}
	return nil
}
