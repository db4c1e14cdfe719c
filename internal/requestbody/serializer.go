package requestbody

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/domain"
	"github.com/goliatone/go-donation-pages/internal/pages"
)

const (
	// TimestampFormat is the textual date format accepted by the page API.
	TimestampFormat = "2006-01-02T15:04:05.000Z07:00"
	// ScreenshotPart names the optional page screenshot part.
	ScreenshotPart = "page_screenshot"
)

var (
	ErrScreenshotBaseNameRequired = errors.New("requestbody: screenshot requested without a base name")
	ErrRasterizerRequired         = errors.New("requestbody: screenshot requested without a rasterizer")
	ErrScreenshotEmpty            = errors.New("requestbody: screenshot rasterization produced no data")
	ErrStyleNotSaved              = errors.New("requestbody: styles must be saved before the page")
)

// Rasterizer turns a rendered page document into a PNG image.
type Rasterizer interface {
	Rasterize(ctx context.Context, document string) ([]byte, error)
}

// RasterizerFunc adapts a function to Rasterizer.
type RasterizerFunc func(ctx context.Context, document string) ([]byte, error)

// Rasterize calls f.
func (f RasterizerFunc) Rasterize(ctx context.Context, document string) ([]byte, error) {
	return f(ctx, document)
}

// ScreenshotRequest asks the serializer to attach a page screenshot. Source
// is the rendered page document. Supplying a Source without a BaseName is an
// error; a BaseName alone takes no screenshot.
type ScreenshotRequest struct {
	BaseName   string
	Source     string
	Rasterizer Rasterizer
	Now        func() time.Time
}

func (r ScreenshotRequest) requested() bool {
	return r.Source != ""
}

// ToRequestBody converts the staged keys of update into a multipart body.
// Only staged keys are written. Thumbnails are never sent, stored image
// references are left out, and the style is reduced to its identifier.
func ToRequestBody(ctx context.Context, update pages.Update, screenshot ScreenshotRequest) (*Body, error) {
	body := &Body{}

	for _, field := range update.TextFields() {
		switch {
		case field.Field.Cleared():
			body.AddValue(field.Key, "")
		case field.Field.IsSet():
			value, _ := field.Field.Value()
			body.AddValue(field.Key, value)
		}
	}

	for _, field := range update.ImageFields() {
		if field.Field.Cleared() {
			body.AddValue(field.Key, "")
			continue
		}
		image, ok := field.Field.Value()
		switch {
		case !ok:
		case image.Pending():
			body.AddFile(field.Key, fileFromUpload(image.Upload))
		case image.Ref == "":
			body.AddValue(field.Key, "")
		}
	}

	switch {
	case update.PublishedDate.Cleared():
		body.AddValue(pages.KeyPublishedDate, "")
	case update.PublishedDate.IsSet():
		published, _ := update.PublishedDate.Value()
		body.AddValue(pages.KeyPublishedDate, FormatTimestamp(published))
	}

	lists := []struct {
		key   string
		field pages.Field[[]blocks.Block]
	}{
		{pages.KeyElements, update.Elements},
		{pages.KeySidebarElements, update.SidebarElements},
	}
	var attachments []blocks.Block
	for _, list := range lists {
		if !list.field.Present() {
			continue
		}
		items, _ := list.field.Value()
		encoded, err := encodeBlocks(items)
		if err != nil {
			return nil, fmt.Errorf("requestbody: encode %s: %w", list.key, err)
		}
		body.AddValue(list.key, encoded)
		attachments = append(attachments, withUploads(items)...)
	}

	switch {
	case update.Styles.Cleared():
		body.AddValue(pages.KeyStyles, "")
	case update.Styles.IsSet():
		style, _ := update.Styles.Value()
		if style.IsNew() {
			return nil, ErrStyleNotSaved
		}
		body.AddValue(pages.KeyStyles, strconv.FormatInt(style.ID, 10))
	}

	for _, block := range attachments {
		image := block.Content.(blocks.ImageContent)
		body.AddFile(block.UUID, fileFromUpload(image.Upload))
	}

	if screenshot.requested() {
		file, err := captureScreenshot(ctx, screenshot)
		if err != nil {
			return nil, err
		}
		body.AddFile(ScreenshotPart, file)
	}
	return body, nil
}

// FormatTimestamp renders t in the wire format in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

func encodeBlocks(items []blocks.Block) (string, error) {
	if items == nil {
		items = []blocks.Block{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func withUploads(items []blocks.Block) []blocks.Block {
	var out []blocks.Block
	for _, block := range items {
		if block.Type == blocks.TypeImage && block.HasUpload() {
			out = append(out, block)
		}
	}
	return out
}

func fileFromUpload(upload *domain.Upload) File {
	return File{
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
		Data:        append([]byte(nil), upload.Data...),
	}
}

func captureScreenshot(ctx context.Context, req ScreenshotRequest) (File, error) {
	if strings.TrimSpace(req.BaseName) == "" {
		return File{}, ErrScreenshotBaseNameRequired
	}
	if req.Rasterizer == nil {
		return File{}, ErrRasterizerRequired
	}
	data, err := req.Rasterizer.Rasterize(ctx, req.Source)
	if err != nil {
		return File{}, fmt.Errorf("requestbody: rasterize %s: %w", req.BaseName, err)
	}
	if len(data) == 0 {
		return File{}, ErrScreenshotEmpty
	}
	now := time.Now
	if req.Now != nil {
		now = req.Now
	}
	return File{
		Filename:    fmt.Sprintf("%s_%d.png", req.BaseName, now().UnixMilli()),
		ContentType: "image/png",
		Data:        data,
	}, nil
}
