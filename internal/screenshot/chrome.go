package screenshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

var (
	ErrViewportInvalid = errors.New("screenshot: viewport must be positive")
	ErrDocumentEmpty   = errors.New("screenshot: document is empty")
)

// Options configures the headless browser used for captures.
type Options struct {
	Width    int
	Height   int
	Timeout  time.Duration
	Headless bool
	Selector string
	ExecPath string
}

// DefaultOptions matches the preview pane of the page editor.
func DefaultOptions() Options {
	return Options{
		Width:    1280,
		Height:   960,
		Timeout:  20 * time.Second,
		Headless: true,
		Selector: "#page-preview",
	}
}

// ChromeRasterizer renders page documents in headless Chrome and captures the
// preview element as a PNG.
type ChromeRasterizer struct {
	opts   Options
	logger interfaces.Logger
}

// Option configures a ChromeRasterizer.
type Option func(*ChromeRasterizer)

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *ChromeRasterizer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewChromeRasterizer validates opts and returns a rasterizer.
func NewChromeRasterizer(opts Options, options ...Option) (*ChromeRasterizer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, ErrViewportInvalid
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if strings.TrimSpace(opts.Selector) == "" {
		opts.Selector = "body"
	}
	r := &ChromeRasterizer{opts: opts, logger: logging.NoOp()}
	for _, option := range options {
		option(r)
	}
	return r, nil
}

// Options returns the effective options.
func (r *ChromeRasterizer) Options() Options {
	return r.opts
}

// Rasterize loads document into a blank tab and screenshots the selector.
func (r *ChromeRasterizer) Rasterize(ctx context.Context, document string) ([]byte, error) {
	if strings.TrimSpace(document) == "" {
		return nil, ErrDocumentEmpty
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", r.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(r.opts.Width, r.opts.Height),
	)
	if r.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	runCtx, cancelRun := context.WithTimeout(browserCtx, r.opts.Timeout)
	defer cancelRun()

	started := time.Now()
	var image []byte
	err := chromedp.Run(runCtx,
		chromedp.EmulateViewport(int64(r.opts.Width), int64(r.opts.Height)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, document).Do(ctx)
		}),
		chromedp.WaitVisible(r.opts.Selector, chromedp.ByQuery),
		chromedp.Screenshot(r.opts.Selector, &image, chromedp.NodeVisible, chromedp.ByQuery),
	)
	if err != nil {
		r.logger.Error("screenshot.capture.failed", "selector", r.opts.Selector, "error", err)
		return nil, fmt.Errorf("screenshot: capture %s: %w", r.opts.Selector, err)
	}
	r.logger.Debug("screenshot.capture.done", "bytes", len(image), "duration_ms", time.Since(started).Milliseconds())
	return image, nil
}
