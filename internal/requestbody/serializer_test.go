package requestbody_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/domain"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/internal/requestbody"
	"github.com/goliatone/go-donation-pages/internal/styles"
)

func noScreenshot() requestbody.ScreenshotRequest {
	return requestbody.ScreenshotRequest{}
}

func assertJSONEqual(t *testing.T, want, got string) {
	t.Helper()
	var wantValue, gotValue any
	if err := json.Unmarshal([]byte(want), &wantValue); err != nil {
		t.Fatalf("unmarshal expected json: %v", err)
	}
	if err := json.Unmarshal([]byte(got), &gotValue); err != nil {
		t.Fatalf("unmarshal json %q: %v", got, err)
	}
	if !reflect.DeepEqual(wantValue, gotValue) {
		t.Fatalf("json mismatch\nwant: %s\ngot:  %s", want, got)
	}
}

func TestToRequestBodyPassesPlainFieldsThrough(t *testing.T) {
	update := pages.Update{
		Name:             pages.Set("Spring Drive"),
		Heading:          pages.Set("  Support local news  "),
		ThankYouRedirect: pages.Set("https://example.org/thanks"),
		Locale:           pages.Set("en"),
	}

	body, err := requestbody.ToRequestBody(context.Background(), update, noScreenshot())
	if err != nil {
		t.Fatalf("ToRequestBody: %v", err)
	}

	if got := strings.Join(body.Names(), ","); got != "name,heading,thank_you_redirect,locale" {
		t.Fatalf("unexpected part order %s", got)
	}
	for key, want := range map[string]string{
		"name":               "Spring Drive",
		"heading":            "  Support local news  ",
		"thank_you_redirect": "https://example.org/thanks",
		"locale":             "en",
	} {
		got, ok := body.Value(key)
		if !ok || got != want {
			t.Fatalf("%s: expected %q, got %q (%v)", key, want, got, ok)
		}
	}
}

func TestToRequestBodyDropsThumbnails(t *testing.T) {
	update := pages.Update{
		GraphicThumbnail:       pages.Set("x"),
		HeaderBgImageThumbnail: pages.Set("x"),
		HeaderLogoThumbnail:    pages.Set("x"),
	}
	body, err := requestbody.ToRequestBody(context.Background(), update, noScreenshot())
	if err != nil {
		t.Fatalf("ToRequestBody: %v", err)
	}
	if body.Len() != 0 {
		t.Fatalf("expected thumbnails dropped, got %v", body.Names())
	}
}

func TestToRequestBodyImageFields(t *testing.T) {
	upload := &domain.Upload{Filename: "hero.png", ContentType: "image/png", Data: []byte("png")}
	update := pages.Update{
		Graphic:       pages.Set(pages.ImageRef("/media/already.png")),
		HeaderBgImage: pages.Set(pages.ImageUpload(upload)),
		HeaderLogo:    pages.Clear[pages.Image](),
	}

	body, err := requestbody.ToRequestBody(context.Background(), update, noScreenshot())
	if err != nil {
		t.Fatalf("ToRequestBody: %v", err)
	}

	if _, ok := body.Value("graphic"); ok {
		t.Fatal("stored references are not resent")
	}
	if _, ok := body.File("graphic"); ok {
		t.Fatal("stored references are not resent as files")
	}

	file, ok := body.File("header_bg_image")
	if !ok {
		t.Fatal("expected header_bg_image file part")
	}
	if file.Filename != "hero.png" || string(file.Data) != "png" {
		t.Fatalf("unexpected file %+v", file)
	}

	logo, ok := body.Value("header_logo")
	if !ok || logo != "" {
		t.Fatalf("expected cleared header_logo as empty value, got %q (%v)", logo, ok)
	}
	if body.Len() != 2 {
		t.Fatalf("expected 2 parts, got %v", body.Names())
	}
}

func TestToRequestBodyDates(t *testing.T) {
	published := time.Date(2024, 5, 1, 13, 4, 5, 123000000, time.FixedZone("CEST", 2*3600))
	body, err := requestbody.ToRequestBody(context.Background(), pages.Update{PublishedDate: pages.Set(published)}, noScreenshot())
	if err != nil {
		t.Fatalf("ToRequestBody: %v", err)
	}
	if value, _ := body.Value("published_date"); value != "2024-05-01T11:04:05.123Z" {
		t.Fatalf("expected UTC millisecond timestamp, got %q", value)
	}

	body, err = requestbody.ToRequestBody(context.Background(), pages.Update{PublishedDate: pages.Clear[time.Time]()}, noScreenshot())
	if err != nil {
		t.Fatalf("ToRequestBody: %v", err)
	}
	value, ok := body.Value("published_date")
	if !ok || value != "" {
		t.Fatalf("cleared publish date is sent as an empty string, got %q (%v)", value, ok)
	}
}

func TestToRequestBodyExtractsBlockAttachments(t *testing.T) {
	blockA := blocks.Block{UUID: "block-a", Type: blocks.TypeRichText, Content: blocks.TextContent("hello")}
	imageBlock := blocks.Block{
		UUID:    "image-1",
		Type:    blocks.TypeImage,
		Content: blocks.ImageContent{Upload: &domain.Upload{Filename: "photo.jpg", ContentType: "image/jpeg", Data: []byte("jpg")}},
	}
	stored := blocks.Block{UUID: "image-2", Type: blocks.TypeImage, Content: blocks.ImageContent{Ref: "/media/old.jpg"}}

	body, err := requestbody.ToRequestBody(context.Background(), pages.Update{
		Elements:        pages.Set([]blocks.Block{blockA, imageBlock}),
		SidebarElements: pages.Set([]blocks.Block{stored}),
	}, noScreenshot())
	if err != nil {
		t.Fatalf("ToRequestBody: %v", err)
	}

	if got := strings.Join(body.Names(), ","); got != "elements,sidebar_elements,image-1" {
		t.Fatalf("unexpected part order %s", got)
	}
	elements, _ := body.Value("elements")
	assertJSONEqual(t, `[
		{"uuid":"block-a","type":"rich-text","content":"hello","requiredFields":[]},
		{"uuid":"image-1","type":"image","content":{},"requiredFields":[]}
	]`, elements)
	sidebar, _ := body.Value("sidebar_elements")
	assertJSONEqual(t, `[{"uuid":"image-2","type":"image","content":"/media/old.jpg","requiredFields":[]}]`, sidebar)

	file, ok := body.File("image-1")
	if !ok || file.Filename != "photo.jpg" {
		t.Fatalf("expected photo.jpg attached under the block uuid, got %+v (%v)", file, ok)
	}
	if len(body.Files()) != 1 {
		t.Fatalf("expected one file part, got %d", len(body.Files()))
	}
}

func TestToRequestBodyReducesStylesToID(t *testing.T) {
	body, err := requestbody.ToRequestBody(context.Background(), pages.Update{
		Styles: pages.Set(styles.Style{ID: 42, Name: "Bold", Styles: map[string]any{"radius": 3}}),
	}, noScreenshot())
	if err != nil {
		t.Fatalf("ToRequestBody: %v", err)
	}
	if value, _ := body.Value("styles"); value != "42" {
		t.Fatalf("expected style id 42, got %q", value)
	}

	_, err = requestbody.ToRequestBody(context.Background(), pages.Update{
		Styles: pages.Set(styles.Style{Name: "Unsaved"}),
	}, noScreenshot())
	if !errors.Is(err, requestbody.ErrStyleNotSaved) {
		t.Fatalf("expected ErrStyleNotSaved, got %v", err)
	}
}

func TestToRequestBodyScreenshot(t *testing.T) {
	now := time.UnixMilli(1717243200123)
	raster := requestbody.RasterizerFunc(func(_ context.Context, document string) ([]byte, error) {
		if document == "" {
			return nil, errors.New("empty document")
		}
		return []byte("PNG"), nil
	})

	body, err := requestbody.ToRequestBody(context.Background(), pages.Update{Name: pages.Set("x")}, requestbody.ScreenshotRequest{
		BaseName:   "spring-drive",
		Source:     "<html></html>",
		Rasterizer: raster,
		Now:        func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("ToRequestBody: %v", err)
	}
	file, ok := body.File(requestbody.ScreenshotPart)
	if !ok {
		t.Fatal("expected screenshot part")
	}
	if file.Filename != "spring-drive_1717243200123.png" || file.ContentType != "image/png" {
		t.Fatalf("unexpected screenshot file %s (%s)", file.Filename, file.ContentType)
	}

	_, err = requestbody.ToRequestBody(context.Background(), pages.Update{}, requestbody.ScreenshotRequest{
		Source:     "<html></html>",
		Rasterizer: raster,
	})
	if !errors.Is(err, requestbody.ErrScreenshotBaseNameRequired) {
		t.Fatalf("expected ErrScreenshotBaseNameRequired, got %v", err)
	}

	empty := requestbody.RasterizerFunc(func(context.Context, string) ([]byte, error) { return nil, nil })
	_, err = requestbody.ToRequestBody(context.Background(), pages.Update{}, requestbody.ScreenshotRequest{
		BaseName:   "spring-drive",
		Source:     "<html></html>",
		Rasterizer: empty,
	})
	if !errors.Is(err, requestbody.ErrScreenshotEmpty) {
		t.Fatalf("expected ErrScreenshotEmpty, got %v", err)
	}

	body, err = requestbody.ToRequestBody(context.Background(), pages.Update{}, requestbody.ScreenshotRequest{BaseName: "only-name"})
	if err != nil {
		t.Fatalf("ToRequestBody: %v", err)
	}
	if body.Len() != 0 {
		t.Fatalf("expected no parts without a rasterizer, got %v", body.Names())
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	published := time.Date(2024, 7, 4, 9, 30, 0, 0, time.UTC)
	update := pages.Update{
		Name:          pages.Set("Spring Drive"),
		HeaderLink:    pages.Clear[string](),
		Graphic:       pages.Set(pages.ImageUpload(&domain.Upload{Filename: "g.png", ContentType: "image/png", Data: []byte("g")})),
		HeaderLogo:    pages.Clear[pages.Image](),
		PublishedDate: pages.Set(published),
		Elements: pages.Set([]blocks.Block{
			{UUID: "amount", Type: blocks.TypeAmount, Content: blocks.AmountContent{AllowOther: true}},
			{UUID: "img", Type: blocks.TypeImage, Content: blocks.ImageContent{Upload: &domain.Upload{Filename: "i.png", Data: []byte("i")}}},
		}),
		Styles: pages.Set(styles.Style{ID: 9}),
	}

	body, err := requestbody.ToRequestBody(context.Background(), update, noScreenshot())
	if err != nil {
		t.Fatalf("ToRequestBody: %v", err)
	}
	contentType, payload, err := body.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("parse content type: %v", err)
	}
	form, err := multipart.NewReader(bytes.NewReader(payload), params["boundary"]).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })

	decoded, err := requestbody.Decode(form)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if name, _ := decoded.Name.Value(); name != "Spring Drive" {
		t.Fatalf("expected name, got %q", name)
	}
	if headerLink, ok := decoded.HeaderLink.Value(); !ok || headerLink != "" {
		t.Fatalf("expected header link set to empty, got %q (%v)", headerLink, ok)
	}
	graphic, _ := decoded.Graphic.Value()
	if !graphic.Pending() || string(graphic.Upload.Data) != "g" {
		t.Fatalf("expected pending graphic upload, got %+v", graphic)
	}
	if !decoded.HeaderLogo.Cleared() {
		t.Fatal("expected header logo cleared")
	}
	if gotPublished, _ := decoded.PublishedDate.Value(); !gotPublished.Equal(published) {
		t.Fatalf("expected published %v, got %v", published, gotPublished)
	}
	if style, _ := decoded.Styles.Value(); style.ID != 9 {
		t.Fatalf("expected style id 9, got %d", style.ID)
	}

	elements, _ := decoded.Elements.Value()
	if len(elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elements))
	}
	amount, ok := elements[0].Content.(blocks.AmountContent)
	if !ok || !amount.AllowOther {
		t.Fatalf("expected amount content with AllowOther, got %#v", elements[0].Content)
	}
	if !elements[1].HasUpload() {
		t.Fatal("expected image block upload restored")
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	form := &multipart.Form{Value: map[string][]string{"bogus": {"1"}}}
	if _, err := requestbody.Decode(form); !errors.Is(err, requestbody.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}
