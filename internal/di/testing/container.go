package ditesting

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-donation-pages/internal/di"
	"github.com/goliatone/go-donation-pages/internal/payments"
	"github.com/goliatone/go-donation-pages/internal/runtimeconfig"
)

// FixedClock is the time source used by containers built through NewContainer.
var FixedClock = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

// NewContainer builds a memory-backed container with a fixed clock and the
// HTTP API enabled. Extra options are applied after the defaults.
func NewContainer(t testing.TB, opts ...di.Option) *di.Container {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.HTTPAPI = true
	options := append([]di.Option{di.WithClock(FixedClock)}, opts...)
	container, err := di.NewContainer(cfg, options...)
	if err != nil {
		t.Fatalf("di.NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })
	return container
}

// Rasterizer records the documents it is asked to capture.
type Rasterizer struct {
	mu        sync.Mutex
	documents []string
	Image     []byte
	Err       error
}

// Rasterize satisfies requestbody.Rasterizer.
func (r *Rasterizer) Rasterize(_ context.Context, document string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents = append(r.documents, document)
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Image == nil {
		return []byte("\x89PNG"), nil
	}
	return r.Image, nil
}

// Documents returns the captured documents.
func (r *Rasterizer) Documents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.documents...)
}

// Processor records confirmations and returns Err when set.
type Processor struct {
	mu    sync.Mutex
	calls []payments.ConfirmParams
	Err   error
}

// ConfirmPayment satisfies payments.Processor.
func (p *Processor) ConfirmPayment(_ context.Context, params payments.ConfirmParams) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, params)
	return p.Err
}

// Calls returns the recorded confirmations.
func (p *Processor) Calls() []payments.ConfirmParams {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]payments.ConfirmParams(nil), p.calls...)
}
