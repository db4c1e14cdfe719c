package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/client"
	"github.com/goliatone/go-donation-pages/internal/editor"
	apihttp "github.com/goliatone/go-donation-pages/internal/http"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/internal/styles"
)

type harness struct {
	client *client.Client
	pages  pages.Service
	styles styles.Service
	page   *pages.Page
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	styleSvc := styles.NewService(styles.NewMemoryRepository())
	pageSvc := pages.NewService(pages.NewMemoryRepository(),
		pages.WithClock(func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }),
		pages.WithStyleLookup(styleSvc),
		pages.WithRegistry(blocks.DefaultRegistry()),
	)
	page, err := pageSvc.Create(context.Background(), pages.CreatePageRequest{
		Name:           "Spring Drive",
		Slug:           "spring-drive",
		RevenueProgram: pages.RevenueProgram{ID: 3, Slug: "daily-planet"},
		Elements: []blocks.Block{
			{UUID: "amount", Type: blocks.TypeAmount},
			{UUID: "frequency", Type: blocks.TypeFrequency},
			{UUID: "donor", Type: blocks.TypeDonorInfo},
			{UUID: "payment", Type: blocks.TypePayment},
		},
	})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}

	mux := http.NewServeMux()
	if err := apihttp.NewAPI(apihttp.WithPageService(pageSvc), apihttp.WithStyleService(styleSvc)).Register(mux); err != nil {
		t.Fatalf("register: %v", err)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c, err := client.New(server.URL+"/api/v1", client.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return &harness{client: c, pages: pageSvc, styles: styleSvc, page: page}
}

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := client.New("/api/v1"); !errors.Is(err, client.ErrBaseURLInvalid) {
		t.Fatalf("expected ErrBaseURLInvalid, got %v", err)
	}
}

func TestClientGetPage(t *testing.T) {
	h := newHarness(t)

	page, err := h.client.GetPage(context.Background(), h.page.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if page.Slug != "spring-drive" || len(page.Elements) != 4 {
		t.Fatalf("unexpected page %+v", page)
	}

	_, err = h.client.GetPage(context.Background(), uuid.New())
	if !errors.Is(err, pages.ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
	var statusErr *client.StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
}

func TestEditorSaveThroughClient(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	session := editor.NewSession(*h.page, editor.WithRegistry(blocks.DefaultRegistry()))
	session.SetChange(pages.Update{
		Heading: pages.Set("Give today"),
		Styles:  pages.Set(styles.Style{Name: "Autumn", Styles: map[string]any{"radius": "4px"}}),
	})

	saver := editor.NewSaver(h.client,
		editor.WithStyleResolver(styles.NewCoordinator(h.client)),
	)
	saved, err := saver.Save(ctx, session, editor.SaveOptions{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Heading != "Give today" {
		t.Fatalf("expected heading saved, got %q", saved.Heading)
	}
	if saved.Styles == nil || saved.Styles.ID == 0 || saved.Styles.Name != "Autumn" {
		t.Fatalf("expected created style attached, got %+v", saved.Styles)
	}
	if session.HasChanges() {
		t.Fatalf("session should be rebased after save")
	}

	stored, err := h.styles.ListForRevenueProgram(ctx, 3)
	if err != nil || len(stored) != 1 {
		t.Fatalf("expected one stored style, got %d (%v)", len(stored), err)
	}
}

func TestEditorSaveSurfacesFieldErrors(t *testing.T) {
	h := newHarness(t)

	session := editor.NewSession(*h.page, editor.WithRegistry(blocks.DefaultRegistry()))
	session.SetChange(pages.Update{Slug: pages.Set("!!!")})

	_, err := editor.NewSaver(h.client).Save(context.Background(), session, editor.SaveOptions{})
	if err == nil {
		t.Fatal("expected rejection")
	}
	if !goerrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	failure := editor.Classify(err)
	if failure.Kind != editor.FailureFieldErrors || len(failure.FieldErrors["slug"]) != 1 {
		t.Fatalf("unexpected classification %+v", failure)
	}
	if !session.HasChanges() {
		t.Fatal("changes must stay staged after a rejected save")
	}
}

func TestStyleUpdateThroughClient(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created, err := h.client.Create(ctx, styles.CreateStyleRequest{Name: "Base", RevenueProgramID: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := h.client.Update(ctx, styles.UpdateStyleRequest{ID: created.ID, Styles: map[string]any{"font": "serif"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Base" || updated.Styles["font"] != "serif" {
		t.Fatalf("unexpected style %+v", updated)
	}

	_, err = h.client.Update(ctx, styles.UpdateStyleRequest{ID: 404, Name: "x"})
	var statusErr *client.StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}
