package requestbody

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/domain"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/internal/styles"
)

// ErrUnknownField is returned when a form carries a key that is not a page
// field.
var ErrUnknownField = errors.New("requestbody: unknown field")

// Decode rebuilds a staged update from a multipart form produced by
// ToRequestBody. Thumbnail keys are ignored. Block image attachments are
// matched back to their blocks by uuid.
func Decode(form *multipart.Form) (pages.Update, error) {
	var update pages.Update
	if form == nil {
		return update, nil
	}

	text := map[string]*pages.Field[string]{
		pages.KeyName:                 &update.Name,
		pages.KeySlug:                 &update.Slug,
		pages.KeyHeading:              &update.Heading,
		pages.KeyHeaderLink:           &update.HeaderLink,
		pages.KeyHeaderLogoAltText:    &update.HeaderLogoAltText,
		pages.KeyThankYouRedirect:     &update.ThankYouRedirect,
		pages.KeyPostThankYouRedirect: &update.PostThankYouRedirect,
		pages.KeyLocale:               &update.Locale,
	}
	images := map[string]*pages.Field[pages.Image]{
		pages.KeyGraphic:       &update.Graphic,
		pages.KeyHeaderBgImage: &update.HeaderBgImage,
		pages.KeyHeaderLogo:    &update.HeaderLogo,
	}
	lists := map[string]*pages.Field[[]blocks.Block]{
		pages.KeyElements:        &update.Elements,
		pages.KeySidebarElements: &update.SidebarElements,
	}

	for key, values := range form.Value {
		if len(values) == 0 {
			continue
		}
		value := values[0]
		switch key {
		case pages.KeyGraphicThumbnail, pages.KeyHeaderBgImageThumbnail, pages.KeyHeaderLogoThumbnail:
			continue
		case pages.KeyPublishedDate:
			if value == "" {
				update.PublishedDate = pages.Clear[time.Time]()
				continue
			}
			published, err := ParseTimestamp(value)
			if err != nil {
				return pages.Update{}, err
			}
			update.PublishedDate = pages.Set(published)
			continue
		case pages.KeyStyles:
			if value == "" {
				update.Styles = pages.Clear[styles.Style]()
				continue
			}
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return pages.Update{}, fmt.Errorf("requestbody: styles: %w", err)
			}
			update.Styles = pages.Set(styles.Style{ID: id})
			continue
		}
		if field, ok := text[key]; ok {
			*field = pages.Set(value)
			continue
		}
		if field, ok := images[key]; ok {
			if value == "" {
				*field = pages.Clear[pages.Image]()
			} else {
				*field = pages.Set(pages.ImageRef(value))
			}
			continue
		}
		if field, ok := lists[key]; ok {
			var items []blocks.Block
			if err := json.Unmarshal([]byte(value), &items); err != nil {
				return pages.Update{}, fmt.Errorf("requestbody: decode %s: %w", key, err)
			}
			if items == nil {
				items = []blocks.Block{}
			}
			*field = pages.Set(items)
			continue
		}
		return pages.Update{}, fmt.Errorf("%w: %s", ErrUnknownField, key)
	}

	for key, field := range images {
		upload, ok, err := formUpload(form, key)
		if err != nil {
			return pages.Update{}, err
		}
		if ok {
			*field = pages.Set(pages.ImageUpload(upload))
		}
	}

	for _, field := range lists {
		items, ok := field.Value()
		if !ok {
			continue
		}
		for idx, block := range items {
			if block.Type != blocks.TypeImage {
				continue
			}
			upload, found, err := formUpload(form, block.UUID)
			if err != nil {
				return pages.Update{}, err
			}
			if found {
				items[idx].Content = blocks.ImageContent{Upload: upload}
			}
		}
		*field = pages.Set(items)
	}
	return update, nil
}

// DecodeScreenshot returns the page screenshot attached to form, if any.
func DecodeScreenshot(form *multipart.Form) (*domain.Upload, error) {
	upload, _, err := formUpload(form, ScreenshotPart)
	return upload, err
}

// ParseTimestamp accepts the wire format and plain RFC 3339.
func ParseTimestamp(value string) (time.Time, error) {
	if parsed, err := time.Parse(TimestampFormat, value); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("requestbody: invalid timestamp %q: %w", value, err)
	}
	return parsed.UTC(), nil
}

func formUpload(form *multipart.Form, key string) (*domain.Upload, bool, error) {
	if form == nil {
		return nil, false, nil
	}
	headers := form.File[key]
	if len(headers) == 0 {
		return nil, false, nil
	}
	header := headers[0]
	file, err := header.Open()
	if err != nil {
		return nil, false, fmt.Errorf("requestbody: open %s: %w", key, err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, false, fmt.Errorf("requestbody: read %s: %w", key, err)
	}
	return &domain.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true, nil
}
