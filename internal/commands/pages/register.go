package pagescmd

import (
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

// Subscription allows hosts to tear down dispatcher subscriptions.
type Subscription interface {
	Unsubscribe()
}

// Handlers bundles the page command handlers.
type Handlers struct {
	Publish   *PublishPageHandler
	Unpublish *UnpublishPageHandler
	Delete    *DeletePageHandler
}

// NewHandlers builds every page command handler against service.
func NewHandlers(service pages.Service, logger interfaces.Logger, clock func() time.Time) Handlers {
	return Handlers{
		Publish:   NewPublishPageHandler(service, logger, clock),
		Unpublish: NewUnpublishPageHandler(service, logger),
		Delete:    NewDeletePageHandler(service, logger),
	}
}

// Subscribe registers the handlers with the global go-command dispatcher.
// Runner options such as retries apply to every handler.
func (h Handlers) Subscribe(opts ...runner.Option) []Subscription {
	return []Subscription{
		dispatcher.SubscribeCommand(h.Publish, opts...),
		dispatcher.SubscribeCommand(h.Unpublish, opts...),
		dispatcher.SubscribeCommand(h.Delete, opts...),
	}
}
