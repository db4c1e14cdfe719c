package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/google/uuid"

	apihttp "github.com/goliatone/go-donation-pages/internal/http"
	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/internal/requestbody"
	"github.com/goliatone/go-donation-pages/internal/styles"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

const (
	routeGroup = "api"
	routePage  = "page"
	routeStyle = "style"
	routeList  = "styles"
)

var (
	// ErrBaseURLInvalid indicates a base URL that is not absolute http(s).
	ErrBaseURLInvalid = errors.New("client: base url must be an absolute http(s) url")
	// ErrUnexpectedStatus is the sentinel behind StatusError.
	ErrUnexpectedStatus = errors.New("client: unexpected response status")
)

// StatusError reports a non-success API response.
type StatusError struct {
	Status   int
	Response apihttp.ErrorResponse
}

func (e *StatusError) Error() string {
	message := e.Response.Message
	if message == "" {
		message = http.StatusText(e.Status)
	}
	return fmt.Sprintf("client: %d %s: %s", e.Status, e.Response.Error, message)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithTimeout sets the per-request timeout of the default transport client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		c.logger = logging.Ensure(logger)
	}
}

// Client talks to the page and style API. It satisfies editor.PageStore and
// styles.Store.
type Client struct {
	http   *http.Client
	routes *urlkit.RouteManager
	logger interfaces.Logger
}

// New builds a client rooted at baseURL, e.g. "https://api.example.com/api/v1".
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBaseURLInvalid, baseURL)
	}
	prefix := strings.TrimRight(parsed.Path, "/")
	c := &Client{
		http: &http.Client{Timeout: 30 * time.Second},
		routes: urlkit.NewRouteManager(&urlkit.Config{
			Groups: []urlkit.GroupConfig{{
				Name:    routeGroup,
				BaseURL: parsed.Scheme + "://" + parsed.Host,
				Paths: map[string]string{
					routePage:  prefix + "/pages/:id",
					routeStyle: prefix + "/styles/:id",
					routeList:  prefix + "/styles",
				},
			}},
		}),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetPage fetches a stored page.
func (c *Client) GetPage(ctx context.Context, id uuid.UUID) (*pages.Page, error) {
	endpoint, err := c.url(routePage, id.String())
	if err != nil {
		return nil, err
	}
	var page pages.Page
	if err := c.do(ctx, http.MethodGet, endpoint, "", nil, &page); err != nil {
		return nil, pageError(id, err)
	}
	return &page, nil
}

// UpdatePage sends a multipart partial update and returns the stored page.
func (c *Client) UpdatePage(ctx context.Context, id uuid.UUID, body *requestbody.Body) (*pages.Page, error) {
	if body == nil {
		body = &requestbody.Body{}
	}
	contentType, payload, err := body.Encode()
	if err != nil {
		return nil, err
	}
	endpoint, err := c.url(routePage, id.String())
	if err != nil {
		return nil, err
	}
	c.logger.Debug("client.page.update", "page_id", id.String(), "parts", body.Len())
	var page pages.Page
	if err := c.do(ctx, http.MethodPatch, endpoint, contentType, payload, &page); err != nil {
		return nil, pageError(id, err)
	}
	return &page, nil
}

// Create creates a style resource.
func (c *Client) Create(ctx context.Context, req styles.CreateStyleRequest) (*styles.Style, error) {
	endpoint, err := c.url(routeList, "")
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var style styles.Style
	if err := c.do(ctx, http.MethodPost, endpoint, "application/json", payload, &style); err != nil {
		return nil, err
	}
	return &style, nil
}

// Update replaces the name and values of a style resource.
func (c *Client) Update(ctx context.Context, req styles.UpdateStyleRequest) (*styles.Style, error) {
	endpoint, err := c.url(routeStyle, fmt.Sprint(req.ID))
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(map[string]any{"name": req.Name, "styles": req.Styles})
	if err != nil {
		return nil, err
	}
	var style styles.Style
	if err := c.do(ctx, http.MethodPatch, endpoint, "application/json", payload, &style); err != nil {
		return nil, err
	}
	return &style, nil
}

func (c *Client) url(route, id string) (string, error) {
	builder := c.routes.Group(routeGroup).Builder(route)
	if id != "" {
		builder.WithParam("id", id)
	}
	return builder.Build()
}

func (c *Client) do(ctx context.Context, method, endpoint, contentType string, payload []byte, target any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "page api request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "read page api response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeFailure(resp.StatusCode, raw)
	}
	if target == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "decode page api response")
	}
	return nil
}

// decodeFailure turns an error response into a typed error. Field errors
// become go-errors validation errors so the editor can show them inline.
func decodeFailure(status int, raw []byte) error {
	statusErr := &StatusError{Status: status}
	_ = json.Unmarshal(raw, &statusErr.Response)

	if len(statusErr.Response.Fields) == 0 {
		return statusErr
	}
	names := make([]string, 0, len(statusErr.Response.Fields))
	for name := range statusErr.Response.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	fieldErrs := make([]goerrors.FieldError, 0, len(names))
	for _, name := range names {
		for _, message := range statusErr.Response.Fields[name] {
			fieldErrs = append(fieldErrs, goerrors.FieldError{Field: name, Message: message})
		}
	}
	message := statusErr.Response.Message
	if message == "" {
		message = "page api rejected the request"
	}
	return goerrors.NewValidation(message, fieldErrs...)
}

func pageError(id uuid.UUID, err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %w", &pages.NotFoundError{Resource: "page", Key: id.String()}, err)
	}
	return err
}
