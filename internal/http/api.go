package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/internal/styles"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

const defaultMaxMemory = 32 << 20

// API registers the page and style endpoints.
type API struct {
	basePath  string
	pages     pages.Service
	styles    styles.Service
	assets    pages.AssetStore
	logger    interfaces.Logger
	maxMemory int64
}

// Option mutates the API configuration.
type Option func(*API)

// NewAPI constructs an API instance.
func NewAPI(opts ...Option) *API {
	api := &API{
		basePath:  "/api/v1",
		logger:    logging.NoOp(),
		maxMemory: defaultMaxMemory,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/api/v1").
func WithBasePath(path string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithPageService wires the page service.
func WithPageService(service pages.Service) Option {
	return func(api *API) {
		api.pages = service
	}
}

// WithStyleService wires the style service.
func WithStyleService(service styles.Service) Option {
	return func(api *API) {
		api.styles = service
	}
}

// WithScreenshotStore stores page screenshots attached to updates.
func WithScreenshotStore(store pages.AssetStore) Option {
	return func(api *API) {
		api.assets = store
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		api.logger = logging.Ensure(logger)
	}
}

// WithMaxMemory bounds the in-memory part of multipart parsing.
func WithMaxMemory(bytes int64) Option {
	return func(api *API) {
		if bytes > 0 {
			api.maxMemory = bytes
		}
	}
}

// Register attaches the endpoints to the provided mux.
func (api *API) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: api is nil")
	}

	base := joinPath(api.basePath, "")
	api.registerPageRoutes(mux, base)
	api.registerStyleRoutes(mux, base)
	return nil
}
