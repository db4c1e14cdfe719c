package editor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/editor"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/internal/requestbody"
	"github.com/goliatone/go-donation-pages/internal/styles"
)

type recordingStore struct {
	calls   int
	bodies  []*requestbody.Body
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (s *recordingStore) UpdatePage(_ context.Context, id uuid.UUID, body *requestbody.Body) (*pages.Page, error) {
	s.calls++
	s.bodies = append(s.bodies, body)
	if s.entered != nil {
		close(s.entered)
	}
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return nil, s.err
	}
	page := samplePage()
	page.ID = id
	if heading, ok := body.Value(pages.KeyHeading); ok {
		page.Heading = heading
	}
	return &page, nil
}

type failingStyleStore struct{}

func (failingStyleStore) Create(context.Context, styles.CreateStyleRequest) (*styles.Style, error) {
	return nil, errors.New("styles endpoint unavailable")
}

func (failingStyleStore) Update(context.Context, styles.UpdateStyleRequest) (*styles.Style, error) {
	return nil, errors.New("styles endpoint unavailable")
}

func TestSaverRejectsMissingRequiredBlocks(t *testing.T) {
	store := &recordingStore{}
	saver := editor.NewSaver(store)
	session := editor.NewSession(samplePage())
	session.SetChange(pages.Update{Elements: pages.Set([]blocks.Block{{UUID: "amount", Type: blocks.TypeAmount}})})

	_, err := saver.Save(context.Background(), session, editor.SaveOptions{})
	var failure *editor.ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if store.calls != 0 {
		t.Fatal("validation failures must not reach the page store")
	}
	if !failure.Report.Has(blocks.TypePayment) || failure.Report.Has(blocks.TypeAmount) {
		t.Fatalf("unexpected report %+v", failure.Report)
	}
	classified := editor.Classify(err)
	if classified.Kind != editor.FailureValidation || classified.Mode != editor.ModeEdit || len(classified.Messages) != 3 {
		t.Fatalf("unexpected classification %+v", classified)
	}
	if !session.HasChanges() {
		t.Fatal("changes must stay staged")
	}
}

func TestSaverCreatesStyleBeforePage(t *testing.T) {
	store := &recordingStore{}
	styleService := styles.NewService(styles.NewMemoryRepository())
	coordinator := styles.NewCoordinator(styleService, styles.WithPlaceholderName(func() string { return "placeholder" }))
	saver := editor.NewSaver(store, editor.WithStyleResolver(coordinator))

	page := samplePage()
	page.RevenueProgram = pages.RevenueProgram{ID: 5, Slug: "daily-planet"}
	session := editor.NewSession(page)
	session.SetChange(pages.Update{
		Heading: pages.Set("Saved heading"),
		Styles:  pages.Set(styles.Style{Styles: map[string]any{"radius": 2}}),
	})

	saved, err := saver.Save(context.Background(), session, editor.SaveOptions{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Heading != "Saved heading" {
		t.Fatalf("unexpected saved page %+v", saved)
	}
	body := store.bodies[0]
	if id, _ := body.Value(pages.KeyStyles); id != "1" {
		t.Fatalf("expected style id in body, got %q", id)
	}
	created, err := styleService.Get(context.Background(), 1)
	if err != nil || created.Name != "placeholder" || created.RevenueProgramID != 5 {
		t.Fatalf("unexpected created style %+v (%v)", created, err)
	}
	if session.HasChanges() || session.Base().Heading != "Saved heading" {
		t.Fatal("expected session rebased on the saved page")
	}
}

func TestSaverStyleFailureStopsPageSave(t *testing.T) {
	store := &recordingStore{}
	saver := editor.NewSaver(store, editor.WithStyleResolver(styles.NewCoordinator(failingStyleStore{})))
	session := editor.NewSession(samplePage())
	session.SetChange(pages.Update{Styles: pages.Set(styles.Style{ID: 3})})

	_, err := saver.Save(context.Background(), session, editor.SaveOptions{})
	var saveErr *styles.SaveError
	if !errors.As(err, &saveErr) {
		t.Fatalf("expected style save error, got %v", err)
	}
	if store.calls != 0 {
		t.Fatal("page must not be saved after a style failure")
	}
	failure := editor.Classify(err)
	if failure.Kind != editor.FailureStyleSave || !failure.Persistent {
		t.Fatalf("expected persistent style failure, got %+v", failure)
	}
	if !session.Changes().Has(pages.KeyStyles) {
		t.Fatal("staged style must survive for a retry")
	}
}

func TestSaverClassifiesStoreFailures(t *testing.T) {
	fieldErr := goerrors.NewValidation("invalid page",
		goerrors.FieldError{Field: "slug", Message: "This slug is already in use."},
	)
	store := &recordingStore{err: fieldErr}
	session := editor.NewSession(samplePage())
	session.SetChange(pages.Update{Slug: pages.Set("taken")})

	_, err := editor.NewSaver(store).Save(context.Background(), session, editor.SaveOptions{})
	failure := editor.Classify(err)
	if failure.Kind != editor.FailureFieldErrors || failure.Mode != editor.ModeEdit {
		t.Fatalf("expected field errors, got %+v", failure)
	}
	if got := failure.FieldErrors["slug"]; len(got) != 1 || got[0] != "This slug is already in use." {
		t.Fatalf("unexpected field errors %v", failure.FieldErrors)
	}

	store.err = errors.New("connection reset")
	_, err = editor.NewSaver(store).Save(context.Background(), session, editor.SaveOptions{})
	failure = editor.Classify(err)
	if failure.Kind != editor.FailureGeneric || failure.Mode != editor.ModePreview || failure.Persistent {
		t.Fatalf("expected generic failure, got %+v", failure)
	}
	if !session.HasChanges() {
		t.Fatal("changes must stay staged after a failed save")
	}
}

func TestSaverAttachesScreenshot(t *testing.T) {
	store := &recordingStore{}
	var rendered string
	saver := editor.NewSaver(store,
		editor.WithRasterizer(requestbody.RasterizerFunc(func(_ context.Context, document string) ([]byte, error) {
			rendered = document
			return []byte("PNG"), nil
		})),
		editor.WithSaverClock(func() time.Time { return time.UnixMilli(1000) }),
	)
	session := editor.NewSession(samplePage())
	session.SetChange(pages.Update{Heading: pages.Set("Shot")})

	if _, err := saver.Save(context.Background(), session, editor.SaveOptions{ScreenshotBaseName: "spring-drive", Screenshot: true}); err != nil {
		t.Fatalf("save: %v", err)
	}
	file, ok := store.bodies[0].File(requestbody.ScreenshotPart)
	if !ok || file.Filename != "spring-drive_1000.png" {
		t.Fatalf("expected screenshot part, got %+v", file)
	}
	if rendered == "" {
		t.Fatal("expected preview document rendered")
	}
}

func TestSaverRejectsConcurrentSave(t *testing.T) {
	store := &recordingStore{block: make(chan struct{}), entered: make(chan struct{})}
	saver := editor.NewSaver(store)
	session := editor.NewSession(samplePage())
	session.SetChange(pages.Update{Heading: pages.Set("First")})

	done := make(chan error, 1)
	go func() {
		_, err := saver.Save(context.Background(), session, editor.SaveOptions{})
		done <- err
	}()
	<-store.entered

	if _, err := saver.Save(context.Background(), session, editor.SaveOptions{}); !errors.Is(err, editor.ErrSaveInProgress) {
		t.Fatalf("expected ErrSaveInProgress, got %v", err)
	}
	close(store.block)
	if err := <-done; err != nil {
		t.Fatalf("first save: %v", err)
	}
}

func TestSaverNothingToSave(t *testing.T) {
	_, err := editor.NewSaver(&recordingStore{}).Save(context.Background(), editor.NewSession(samplePage()), editor.SaveOptions{})
	if !errors.Is(err, editor.ErrNothingToSave) {
		t.Fatalf("expected ErrNothingToSave, got %v", err)
	}
}
