package payments

import (
	"context"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-donation-pages/internal/domain"
	"github.com/goliatone/go-donation-pages/internal/identity"
	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

// ErrProcessorRequired is returned when no payment processor is configured.
var ErrProcessorRequired = errors.New("payments: processor required")

// Processor error types the contributor can recover from.
const (
	ErrorTypeCard       = "card_error"
	ErrorTypeValidation = "validation_error"
)

// BillingDetails is sent with a confirmation. Only the name is sent; the
// other billing fields were collected earlier in checkout.
type BillingDetails struct {
	Name string `json:"name"`
}

// ConfirmParams is the processor confirmation payload.
type ConfirmParams struct {
	ClientSecret   string         `json:"client_secret"`
	ReturnURL      string         `json:"return_url"`
	BillingDetails BillingDetails `json:"billing_details"`
}

// Processor confirms a payment. On success the processor redirects the
// contributor to ReturnURL; a *ProcessorError reports a failure the
// contributor can correct.
type Processor interface {
	ConfirmPayment(ctx context.Context, params ConfirmParams) error
}

// ProcessorError is an error object returned by the payment processor.
type ProcessorError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ProcessorError) Error() string {
	if e.Code == "" {
		return "payments: " + e.Type + ": " + e.Message
	}
	return "payments: " + e.Type + " (" + e.Code + "): " + e.Message
}

// Recoverable reports whether the contributor can correct the failure.
func (e *ProcessorError) Recoverable() bool {
	return e.Type == ErrorTypeCard || e.Type == ErrorTypeValidation
}

// ConfirmRequest bundles a checkout confirmation. Amount is already formatted
// for display.
type ConfirmRequest struct {
	ClientSecret     string
	Amount           string
	Interval         domain.Interval
	ContributorName  string
	ContributorEmail string
	PageSlug         string
	RPSlug           string
	ThankYouRedirect string
	PathName         string
}

// CheckoutOption configures a Checkout.
type CheckoutOption func(*Checkout)

// WithCheckoutLogger attaches a logger.
func WithCheckoutLogger(logger interfaces.Logger) CheckoutOption {
	return func(c *Checkout) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Checkout confirms payments with the processor and points it at the
// payment success page.
type Checkout struct {
	processor Processor
	origin    string
	tokenKey  string
	logger    interfaces.Logger
}

// NewCheckout binds a processor to the site origin and the key used to derive
// contributor tokens.
func NewCheckout(processor Processor, origin, tokenKey string, opts ...CheckoutOption) *Checkout {
	c := &Checkout{
		processor: processor,
		origin:    strings.TrimSpace(origin),
		tokenKey:  tokenKey,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Confirm builds the success URL and asks the processor to confirm the
// payment. It returns the success URL. Recoverable processor errors are
// returned unchanged; anything else is wrapped as an external failure.
func (c *Checkout) Confirm(ctx context.Context, req ConfirmRequest) (string, error) {
	if c.processor == nil {
		return "", ErrProcessorRequired
	}
	successURL, err := BuildSuccessURL(SuccessURLArgs{
		Origin:           c.origin,
		ThankYouRedirect: req.ThankYouRedirect,
		Amount:           req.Amount,
		EmailHash:        identity.ContributorToken(c.tokenKey, req.ContributorEmail),
		FrequencyDisplay: req.Interval.DisplayName(),
		ContributorEmail: req.ContributorEmail,
		PageSlug:         req.PageSlug,
		RPSlug:           req.RPSlug,
		PathName:         req.PathName,
	})
	if err != nil {
		c.logger.Error("payments.confirm.args", "error", err)
		return "", err
	}

	err = c.processor.ConfirmPayment(ctx, ConfirmParams{
		ClientSecret:   req.ClientSecret,
		ReturnURL:      successURL,
		BillingDetails: BillingDetails{Name: req.ContributorName},
	})
	if err == nil {
		c.logger.Info("payments.confirm.ok", "page", req.PageSlug, "interval", string(req.Interval))
		return successURL, nil
	}

	var processorErr *ProcessorError
	if errors.As(err, &processorErr) && processorErr.Recoverable() {
		c.logger.Warn("payments.confirm.declined", "type", processorErr.Type, "code", processorErr.Code)
		return "", processorErr
	}
	c.logger.Error("payments.confirm.failed", "error", err)
	return "", goerrors.Wrap(err, goerrors.CategoryExternal, "payment confirmation failed")
}
