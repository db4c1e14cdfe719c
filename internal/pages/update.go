package pages

import (
	"time"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/styles"
)

// Wire keys for the mutable page fields.
const (
	KeyName                   = "name"
	KeySlug                   = "slug"
	KeyHeading                = "heading"
	KeyHeaderLink             = "header_link"
	KeyHeaderLogoAltText      = "header_logo_alt_text"
	KeyThankYouRedirect       = "thank_you_redirect"
	KeyPostThankYouRedirect   = "post_thank_you_redirect"
	KeyLocale                 = "locale"
	KeyGraphic                = "graphic"
	KeyGraphicThumbnail       = "graphic_thumbnail"
	KeyHeaderBgImage          = "header_bg_image"
	KeyHeaderBgImageThumbnail = "header_bg_image_thumbnail"
	KeyHeaderLogo             = "header_logo"
	KeyHeaderLogoThumbnail    = "header_logo_thumbnail"
	KeyPublishedDate          = "published_date"
	KeyElements               = "elements"
	KeySidebarElements        = "sidebar_elements"
	KeyStyles                 = "styles"
)

// Update is a sparse overlay of page fields staged for saving. Only fields
// in a non-unset state are applied or transmitted.
type Update struct {
	Name                   Field[string]
	Slug                   Field[string]
	Heading                Field[string]
	HeaderLink             Field[string]
	HeaderLogoAltText      Field[string]
	ThankYouRedirect       Field[string]
	PostThankYouRedirect   Field[string]
	Locale                 Field[string]
	Graphic                Field[Image]
	GraphicThumbnail       Field[string]
	HeaderBgImage          Field[Image]
	HeaderBgImageThumbnail Field[string]
	HeaderLogo             Field[Image]
	HeaderLogoThumbnail    Field[string]
	PublishedDate          Field[time.Time]
	Elements               Field[[]blocks.Block]
	SidebarElements        Field[[]blocks.Block]
	Styles                 Field[styles.Style]
}

// TextFields returns the plain string fields keyed by wire name, in wire order.
func (u Update) TextFields() []TextField {
	return []TextField{
		{Key: KeyName, Field: u.Name},
		{Key: KeySlug, Field: u.Slug},
		{Key: KeyHeading, Field: u.Heading},
		{Key: KeyHeaderLink, Field: u.HeaderLink},
		{Key: KeyHeaderLogoAltText, Field: u.HeaderLogoAltText},
		{Key: KeyThankYouRedirect, Field: u.ThankYouRedirect},
		{Key: KeyPostThankYouRedirect, Field: u.PostThankYouRedirect},
		{Key: KeyLocale, Field: u.Locale},
	}
}

// ImageFields returns the three primary image slots keyed by wire name.
func (u Update) ImageFields() []ImageField {
	return []ImageField{
		{Key: KeyGraphic, Field: u.Graphic},
		{Key: KeyHeaderBgImage, Field: u.HeaderBgImage},
		{Key: KeyHeaderLogo, Field: u.HeaderLogo},
	}
}

// TextField pairs a wire key with a staged string.
type TextField struct {
	Key   string
	Field Field[string]
}

// ImageField pairs a wire key with a staged image slot.
type ImageField struct {
	Key   string
	Field Field[Image]
}

// Keys lists the staged wire keys in a stable order.
func (u Update) Keys() []string {
	keys := make([]string, 0, 18)
	for _, field := range u.TextFields() {
		if field.Field.Present() {
			keys = append(keys, field.Key)
		}
	}
	staged := []struct {
		key     string
		present bool
	}{
		{KeyGraphic, u.Graphic.Present()},
		{KeyGraphicThumbnail, u.GraphicThumbnail.Present()},
		{KeyHeaderBgImage, u.HeaderBgImage.Present()},
		{KeyHeaderBgImageThumbnail, u.HeaderBgImageThumbnail.Present()},
		{KeyHeaderLogo, u.HeaderLogo.Present()},
		{KeyHeaderLogoThumbnail, u.HeaderLogoThumbnail.Present()},
		{KeyPublishedDate, u.PublishedDate.Present()},
		{KeyElements, u.Elements.Present()},
		{KeySidebarElements, u.SidebarElements.Present()},
		{KeyStyles, u.Styles.Present()},
	}
	for _, entry := range staged {
		if entry.present {
			keys = append(keys, entry.key)
		}
	}
	return keys
}

// HasChanges reports whether at least one key is staged.
func (u Update) HasChanges() bool {
	return len(u.Keys()) > 0
}

// Has reports whether key is staged.
func (u Update) Has(key string) bool {
	for _, staged := range u.Keys() {
		if staged == key {
			return true
		}
	}
	return false
}

// Merge overlays next onto u key by key. Keys staged in next win; every other
// key keeps its current staged value. Block lists are replaced as a whole.
func (u Update) Merge(next Update) Update {
	merged := Update{
		Name:                   u.Name.overlay(next.Name),
		Slug:                   u.Slug.overlay(next.Slug),
		Heading:                u.Heading.overlay(next.Heading),
		HeaderLink:             u.HeaderLink.overlay(next.HeaderLink),
		HeaderLogoAltText:      u.HeaderLogoAltText.overlay(next.HeaderLogoAltText),
		ThankYouRedirect:       u.ThankYouRedirect.overlay(next.ThankYouRedirect),
		PostThankYouRedirect:   u.PostThankYouRedirect.overlay(next.PostThankYouRedirect),
		Locale:                 u.Locale.overlay(next.Locale),
		Graphic:                u.Graphic.overlay(next.Graphic),
		GraphicThumbnail:       u.GraphicThumbnail.overlay(next.GraphicThumbnail),
		HeaderBgImage:          u.HeaderBgImage.overlay(next.HeaderBgImage),
		HeaderBgImageThumbnail: u.HeaderBgImageThumbnail.overlay(next.HeaderBgImageThumbnail),
		HeaderLogo:             u.HeaderLogo.overlay(next.HeaderLogo),
		HeaderLogoThumbnail:    u.HeaderLogoThumbnail.overlay(next.HeaderLogoThumbnail),
		PublishedDate:          u.PublishedDate.overlay(next.PublishedDate),
		Elements:               u.Elements.overlay(next.Elements),
		SidebarElements:        u.SidebarElements.overlay(next.SidebarElements),
		Styles:                 u.Styles.overlay(next.Styles),
	}
	return merged.Clone()
}

// Clone deep copies staged block lists, uploads and styles.
func (u Update) Clone() Update {
	cloned := u
	cloned.Graphic = cloneImageField(u.Graphic)
	cloned.HeaderBgImage = cloneImageField(u.HeaderBgImage)
	cloned.HeaderLogo = cloneImageField(u.HeaderLogo)
	if list, ok := u.Elements.Value(); ok {
		cloned.Elements = Set(blocks.CloneList(list))
	}
	if list, ok := u.SidebarElements.Value(); ok {
		cloned.SidebarElements = Set(blocks.CloneList(list))
	}
	if style, ok := u.Styles.Value(); ok {
		cloned.Styles = Set(style.Clone())
	}
	return cloned
}

func cloneImageField(field Field[Image]) Field[Image] {
	image, ok := field.Value()
	if !ok {
		return field
	}
	image.Upload = image.Upload.Clone()
	return Set(image)
}

// Apply returns the preview of base with every staged key applied.
func (u Update) Apply(base Page) Page {
	page := base.Clone()
	page.Name = u.Name.Resolve(page.Name)
	page.Slug = u.Slug.Resolve(page.Slug)
	page.Heading = u.Heading.Resolve(page.Heading)
	page.HeaderLink = u.HeaderLink.Resolve(page.HeaderLink)
	page.HeaderLogoAltText = u.HeaderLogoAltText.Resolve(page.HeaderLogoAltText)
	page.ThankYouRedirect = u.ThankYouRedirect.Resolve(page.ThankYouRedirect)
	page.PostThankYouRedirect = u.PostThankYouRedirect.Resolve(page.PostThankYouRedirect)
	page.Locale = u.Locale.Resolve(page.Locale)
	page.Graphic = u.Graphic.Resolve(page.Graphic)
	page.GraphicThumbnail = u.GraphicThumbnail.Resolve(page.GraphicThumbnail)
	page.HeaderBgImage = u.HeaderBgImage.Resolve(page.HeaderBgImage)
	page.HeaderBgImageThumbnail = u.HeaderBgImageThumbnail.Resolve(page.HeaderBgImageThumbnail)
	page.HeaderLogo = u.HeaderLogo.Resolve(page.HeaderLogo)
	page.HeaderLogoThumbnail = u.HeaderLogoThumbnail.Resolve(page.HeaderLogoThumbnail)

	switch {
	case u.PublishedDate.IsSet():
		published, _ := u.PublishedDate.Value()
		page.PublishedDate = &published
	case u.PublishedDate.Cleared():
		page.PublishedDate = nil
	}

	page.Elements = u.Elements.Resolve(page.Elements)
	page.SidebarElements = u.SidebarElements.Resolve(page.SidebarElements)

	switch {
	case u.Styles.IsSet():
		style, _ := u.Styles.Value()
		style = style.Clone()
		page.Styles = &style
		if style.IsNew() {
			page.StyleID = nil
		} else {
			id := style.ID
			page.StyleID = &id
		}
	case u.Styles.Cleared():
		page.Styles = nil
		page.StyleID = nil
	}
	return page.Clone()
}
