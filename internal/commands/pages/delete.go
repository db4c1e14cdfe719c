package pagescmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-donation-pages/internal/commands"
	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

const deletePageMessageType = "donations.pages.delete"

// DeletePageCommand removes a page. Live pages require Confirmed.
type DeletePageCommand struct {
	PageID    uuid.UUID `json:"page_id"`
	Confirmed bool      `json:"confirmed"`
}

// Type implements command.Message.
func (DeletePageCommand) Type() string { return deletePageMessageType }

// Validate ensures the command identifies a page.
func (m DeletePageCommand) Validate() error {
	if m.PageID == uuid.Nil {
		return validation.Errors{
			"page_id": validation.NewError("donations.pages.delete.page_id_required", "page_id is required"),
		}
	}
	return nil
}

// DeletePageHandler deletes pages via the page service.
type DeletePageHandler struct {
	inner *commands.Handler[DeletePageCommand]
}

// NewDeletePageHandler constructs a handler wired to the page service.
func NewDeletePageHandler(service pages.Service, logger interfaces.Logger, opts ...commands.HandlerOption[DeletePageCommand]) *DeletePageHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg DeletePageCommand) error {
		return service.Delete(ctx, pages.DeletePageRequest{ID: msg.PageID, Confirmed: msg.Confirmed})
	}

	handlerOpts := []commands.HandlerOption[DeletePageCommand]{
		commands.WithLogger[DeletePageCommand](baseLogger),
		commands.WithOperation[DeletePageCommand]("pages.delete"),
		commands.WithMessageFields(func(msg DeletePageCommand) map[string]any {
			return map[string]any{"page_id": msg.PageID, "confirmed": msg.Confirmed}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[DeletePageCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeletePageHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[DeletePageCommand].Execute.
func (h *DeletePageHandler) Execute(ctx context.Context, msg DeletePageCommand) error {
	return h.inner.Execute(ctx, msg)
}
