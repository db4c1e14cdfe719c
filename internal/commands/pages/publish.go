package pagescmd

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-donation-pages/internal/commands"
	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

const (
	publishPageMessageType   = "donations.pages.publish"
	unpublishPageMessageType = "donations.pages.unpublish"
)

// PublishPageCommand publishes a page. A future PublishAt schedules the page:
// it stays unpublished until that instant passes.
type PublishPageCommand struct {
	PageID    uuid.UUID  `json:"page_id"`
	PublishAt *time.Time `json:"publish_at,omitempty"`
}

// Type implements command.Message.
func (PublishPageCommand) Type() string { return publishPageMessageType }

// Validate ensures the command identifies a page.
func (m PublishPageCommand) Validate() error {
	errs := validation.Errors{}
	if m.PageID == uuid.Nil {
		errs["page_id"] = validation.NewError("donations.pages.publish.page_id_required", "page_id is required")
	}
	if m.PublishAt != nil && m.PublishAt.IsZero() {
		errs["publish_at"] = validation.NewError("donations.pages.publish.publish_at_invalid", "publish_at must be a valid timestamp when provided")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UnpublishPageCommand clears a page's published date.
type UnpublishPageCommand struct {
	PageID uuid.UUID `json:"page_id"`
}

// Type implements command.Message.
func (UnpublishPageCommand) Type() string { return unpublishPageMessageType }

// Validate ensures the command identifies a page.
func (m UnpublishPageCommand) Validate() error {
	if m.PageID == uuid.Nil {
		return validation.Errors{
			"page_id": validation.NewError("donations.pages.unpublish.page_id_required", "page_id is required"),
		}
	}
	return nil
}

// PublishPageHandler publishes pages via the page service.
type PublishPageHandler struct {
	inner *commands.Handler[PublishPageCommand]
}

// NewPublishPageHandler constructs a handler wired to the page service. The
// clock supplies the publish instant when the command carries none.
func NewPublishPageHandler(service pages.Service, logger interfaces.Logger, clock func() time.Time, opts ...commands.HandlerOption[PublishPageCommand]) *PublishPageHandler {
	baseLogger := logging.Ensure(logger)
	if clock == nil {
		clock = time.Now
	}

	exec := func(ctx context.Context, msg PublishPageCommand) error {
		at := clock().UTC()
		if msg.PublishAt != nil {
			at = msg.PublishAt.UTC()
		}
		_, err := service.Publish(ctx, msg.PageID, at)
		return err
	}

	handlerOpts := []commands.HandlerOption[PublishPageCommand]{
		commands.WithLogger[PublishPageCommand](baseLogger),
		commands.WithOperation[PublishPageCommand]("pages.publish"),
		commands.WithMessageFields(func(msg PublishPageCommand) map[string]any {
			fields := map[string]any{"page_id": msg.PageID}
			if msg.PublishAt != nil {
				fields["publish_at"] = msg.PublishAt.UTC()
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PublishPageCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishPageHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PublishPageCommand].Execute.
func (h *PublishPageHandler) Execute(ctx context.Context, msg PublishPageCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UnpublishPageHandler takes pages offline by clearing the published date.
type UnpublishPageHandler struct {
	inner *commands.Handler[UnpublishPageCommand]
}

// NewUnpublishPageHandler constructs a handler wired to the page service.
func NewUnpublishPageHandler(service pages.Service, logger interfaces.Logger, opts ...commands.HandlerOption[UnpublishPageCommand]) *UnpublishPageHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg UnpublishPageCommand) error {
		_, err := service.ApplyUpdate(ctx, msg.PageID, pages.Update{
			PublishedDate: pages.Clear[time.Time](),
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[UnpublishPageCommand]{
		commands.WithLogger[UnpublishPageCommand](baseLogger),
		commands.WithOperation[UnpublishPageCommand]("pages.unpublish"),
		commands.WithMessageFields(func(msg UnpublishPageCommand) map[string]any {
			return map[string]any{"page_id": msg.PageID}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[UnpublishPageCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UnpublishPageHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[UnpublishPageCommand].Execute.
func (h *UnpublishPageHandler) Execute(ctx context.Context, msg UnpublishPageCommand) error {
	return h.inner.Execute(ctx, msg)
}
