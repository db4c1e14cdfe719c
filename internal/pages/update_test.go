package pages_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/domain"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/internal/styles"
)

func basePage() pages.Page {
	return pages.Page{
		Name:     "Spring Drive",
		Slug:     "spring-drive",
		Heading:  "Support local news",
		Graphic:  pages.ImageRef("/media/graphic.png"),
		Elements: []blocks.Block{{UUID: "a", Type: blocks.TypeAmount}, {UUID: "b", Type: blocks.TypeRichText, Content: blocks.TextContent("hi")}},
	}
}

func TestUpdateMergeIsKeyWise(t *testing.T) {
	staged := pages.Update{Heading: pages.Set("New heading")}
	staged = staged.Merge(pages.Update{Name: pages.Set("Renamed")})
	staged = staged.Merge(pages.Update{Elements: pages.Set([]blocks.Block{{UUID: "c", Type: blocks.TypePayment}})})

	if got, _ := staged.Heading.Value(); got != "New heading" {
		t.Fatalf("expected heading to survive merges, got %q", got)
	}
	if got, _ := staged.Name.Value(); got != "Renamed" {
		t.Fatalf("expected name staged, got %q", got)
	}
	want := []string{pages.KeyName, pages.KeyHeading, pages.KeyElements}
	if keys := staged.Keys(); !reflect.DeepEqual(keys, want) {
		t.Fatalf("expected keys %v, got %v", want, keys)
	}
}

func TestUpdateMergeReplacesBlockListsWholesale(t *testing.T) {
	staged := pages.Update{Elements: pages.Set([]blocks.Block{{UUID: "a"}, {UUID: "b"}})}
	staged = staged.Merge(pages.Update{Elements: pages.Set([]blocks.Block{{UUID: "z"}})})

	list, _ := staged.Elements.Value()
	if len(list) != 1 || list[0].UUID != "z" {
		t.Fatalf("expected list replaced, got %+v", list)
	}
}

func TestUpdateMergeIsolatesStagedLists(t *testing.T) {
	source := []blocks.Block{{UUID: "a", Type: blocks.TypeDonorInfo, Content: blocks.FieldsContent{"k": "v"}}}
	staged := pages.Update{}.Merge(pages.Update{Elements: pages.Set(source)})
	source[0].UUID = "mutated"

	list, _ := staged.Elements.Value()
	if list[0].UUID != "a" {
		t.Fatalf("expected staged list isolated from caller, got %q", list[0].UUID)
	}
}

func TestUpdateApply(t *testing.T) {
	base := basePage()
	published := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	update := pages.Update{
		Heading:       pages.Set("Changed"),
		Graphic:       pages.Clear[pages.Image](),
		PublishedDate: pages.Set(published),
		Styles:        pages.Set(styles.Style{ID: 7, Name: "Bold"}),
	}

	preview := update.Apply(base)
	if preview.Heading != "Changed" || preview.Name != base.Name {
		t.Fatalf("unexpected preview %+v", preview)
	}
	if preview.Graphic.Ref != "" {
		t.Fatalf("expected graphic cleared, got %q", preview.Graphic.Ref)
	}
	if preview.PublishedDate == nil || !preview.PublishedDate.Equal(published) {
		t.Fatalf("expected published date applied, got %v", preview.PublishedDate)
	}
	if preview.StyleID == nil || *preview.StyleID != 7 || preview.Styles.Name != "Bold" {
		t.Fatalf("expected style applied, got %+v", preview.Styles)
	}
	if !preview.IsPublished(published) {
		t.Fatal("expected page published at its publish date")
	}
	if base.Heading != "Support local news" || base.Graphic.Ref == "" {
		t.Fatal("expected base page untouched")
	}

	cleared := pages.Update{PublishedDate: pages.Clear[time.Time]()}.Apply(preview)
	if cleared.PublishedDate != nil || cleared.PublishState(published) != domain.StateDraft {
		t.Fatalf("expected draft after clearing publish date, got %v", cleared.PublishedDate)
	}
}

func TestUpdateHasChanges(t *testing.T) {
	if (pages.Update{}).HasChanges() {
		t.Fatal("empty update must not report changes")
	}
	if !(pages.Update{GraphicThumbnail: pages.Set("x")}).HasChanges() {
		t.Fatal("expected thumbnail key to count as a change")
	}
	if !(pages.Update{HeaderLogo: pages.Clear[pages.Image]()}).Has(pages.KeyHeaderLogo) {
		t.Fatal("expected cleared key to be staged")
	}
}

func TestFieldResolve(t *testing.T) {
	var unset pages.Field[string]
	if unset.Resolve("base") != "base" {
		t.Fatal("unset field must fall through")
	}
	if pages.Set("next").Resolve("base") != "next" {
		t.Fatal("set field must win")
	}
	if pages.Clear[string]().Resolve("base") != "" {
		t.Fatal("cleared field must reset to zero value")
	}
}

func TestImageJSON(t *testing.T) {
	data, err := pages.ImageRef("/media/a.png").MarshalJSON()
	if err != nil || string(data) != `"/media/a.png"` {
		t.Fatalf("unexpected json %s (%v)", data, err)
	}
	data, err = pages.ImageUpload(&domain.Upload{Filename: "a.png", Data: []byte{1}}).MarshalJSON()
	if err != nil || string(data) != "null" {
		t.Fatalf("uploads must not be encoded, got %s (%v)", data, err)
	}
	var image pages.Image
	if err := image.UnmarshalJSON([]byte(`"/media/b.png"`)); err != nil || image.Ref != "/media/b.png" {
		t.Fatalf("unexpected decode %+v (%v)", image, err)
	}
}
