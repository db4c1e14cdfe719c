package donations

import (
	"context"
	"net/http"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/di"
	"github.com/goliatone/go-donation-pages/internal/editor"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/internal/payments"
	"github.com/goliatone/go-donation-pages/internal/styles"
)

// PageService exports the page service contract.
type PageService = pages.Service

// StyleService exports the style service contract.
type StyleService = styles.Service

// Page exports the donation page record.
type Page = pages.Page

// Update exports the staged partial page update.
type Update = pages.Update

// Session exports the editor session.
type Session = editor.Session

// Saver exports the editor saver.
type Saver = editor.Saver

// SaveOptions exports the saver options.
type SaveOptions = editor.SaveOptions

// Failure exports the classified save failure.
type Failure = editor.Failure

// Checkout exports the payment checkout.
type Checkout = payments.Checkout

// ConfirmRequest exports the checkout confirmation request.
type ConfirmRequest = payments.ConfirmRequest

// FeeSchedule exports the processor fee terms.
type FeeSchedule = payments.FeeSchedule

// Registry exports the block registry.
type Registry = blocks.Registry

// Module represents the top level donation page runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Pages returns the configured page service.
func (m *Module) Pages() PageService {
	return m.container.PageService()
}

// Styles returns the configured style service.
func (m *Module) Styles() StyleService {
	return m.container.StyleService()
}

// Registry returns the block registry.
func (m *Module) Registry() *Registry {
	return m.container.Registry()
}

// Edit opens an editor session over page.
func (m *Module) Edit(page Page) *Session {
	return m.container.NewSession(page)
}

// Saver returns the editor saver.
func (m *Module) Saver() *Saver {
	return m.container.Saver()
}

// Save persists the changes staged in session.
func (m *Module) Save(ctx context.Context, session *Session, opts SaveOptions) (*Page, error) {
	return m.container.Saver().Save(ctx, session, opts)
}

// Fees returns the configured fee schedule.
func (m *Module) Fees() FeeSchedule {
	return m.container.FeeSchedule()
}

// Checkout returns the payment checkout. It fails when no processor was
// supplied through di.WithPaymentProcessor.
func (m *Module) Checkout() (*Checkout, error) {
	return m.container.Checkout()
}

// Handler mounts the page and style API on a new mux. It returns
// ErrHTTPAPIDisabled when the http_api feature is off.
func (m *Module) Handler() (http.Handler, error) {
	api := m.container.API()
	if api == nil {
		return nil, ErrHTTPAPIDisabled
	}
	mux := http.NewServeMux()
	if err := api.Register(mux); err != nil {
		return nil, err
	}
	return mux, nil
}

// Close releases resources held by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
