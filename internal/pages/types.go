package pages

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/domain"
	"github.com/goliatone/go-donation-pages/internal/styles"
)

// Image is a page image slot: either a stored reference or a new upload.
type Image struct {
	Ref    string
	Upload *domain.Upload
}

// ImageRef builds an Image that points at a stored file.
func ImageRef(ref string) Image {
	return Image{Ref: ref}
}

// ImageUpload builds an Image for a new attachment.
func ImageUpload(upload *domain.Upload) Image {
	return Image{Upload: upload}
}

// Pending reports whether the image carries a new attachment.
func (i Image) Pending() bool {
	return !i.Upload.Empty()
}

// MarshalJSON writes the stored reference; uploads never appear in JSON.
func (i Image) MarshalJSON() ([]byte, error) {
	if i.Ref == "" {
		return []byte("null"), nil
	}
	return json.Marshal(i.Ref)
}

// UnmarshalJSON accepts a string reference or null.
func (i *Image) UnmarshalJSON(data []byte) error {
	*i = Image{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return json.Unmarshal(data, &i.Ref)
}

// Value stores the reference column.
func (i Image) Value() (driver.Value, error) {
	if i.Ref == "" {
		return nil, nil
	}
	return i.Ref, nil
}

// Scan reads the reference column.
func (i *Image) Scan(src any) error {
	*i = Image{}
	switch typed := src.(type) {
	case nil:
		return nil
	case string:
		i.Ref = typed
	case []byte:
		i.Ref = string(typed)
	default:
		return fmt.Errorf("pages: cannot scan %T into Image", src)
	}
	return nil
}

// RevenueProgram is the organization unit a page collects contributions for.
type RevenueProgram struct {
	ID        int64  `bun:"id" json:"id"`
	Name      string `bun:"name" json:"name"`
	Slug      string `bun:"slug" json:"slug"`
	NonProfit bool   `bun:"non_profit" json:"non_profit"`
}

// PaymentProvider links a page to the processor account collecting funds.
type PaymentProvider struct {
	StripeAccountID string `bun:"stripe_account_id" json:"stripe_account_id"`
	Currency        string `bun:"currency" json:"currency"`
	Verified        bool   `bun:"verified" json:"stripe_verified"`
}

// Page is an editable donation page.
type Page struct {
	bun.BaseModel `bun:"table:donation_pages,alias:dp"`

	ID                     uuid.UUID       `bun:",pk,type:uuid" json:"id"`
	Name                   string          `bun:"name,notnull" json:"name"`
	Slug                   string          `bun:"slug,notnull,unique" json:"slug"`
	Heading                string          `bun:"heading" json:"heading"`
	HeaderLink             string          `bun:"header_link" json:"header_link"`
	HeaderLogoAltText      string          `bun:"header_logo_alt_text" json:"header_logo_alt_text"`
	ThankYouRedirect       string          `bun:"thank_you_redirect" json:"thank_you_redirect"`
	PostThankYouRedirect   string          `bun:"post_thank_you_redirect" json:"post_thank_you_redirect"`
	Locale                 string          `bun:"locale" json:"locale"`
	Graphic                Image           `bun:"graphic,type:varchar" json:"graphic"`
	GraphicThumbnail       string          `bun:"graphic_thumbnail" json:"graphic_thumbnail"`
	HeaderBgImage          Image           `bun:"header_bg_image,type:varchar" json:"header_bg_image"`
	HeaderBgImageThumbnail string          `bun:"header_bg_image_thumbnail" json:"header_bg_image_thumbnail"`
	HeaderLogo             Image           `bun:"header_logo,type:varchar" json:"header_logo"`
	HeaderLogoThumbnail    string          `bun:"header_logo_thumbnail" json:"header_logo_thumbnail"`
	PublishedDate          *time.Time      `bun:"published_date" json:"published_date"`
	Elements               []blocks.Block  `bun:"elements,type:jsonb" json:"elements"`
	SidebarElements        []blocks.Block  `bun:"sidebar_elements,type:jsonb" json:"sidebar_elements"`
	StyleID                *int64          `bun:"style_id" json:"-"`
	Styles                 *styles.Style   `bun:"-" json:"styles"`
	RevenueProgram         RevenueProgram  `bun:"embed:revenue_program_" json:"revenue_program"`
	PaymentProvider        PaymentProvider `bun:"embed:payment_provider_" json:"payment_provider"`
	CreatedAt              time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created"`
	UpdatedAt              time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"modified"`
}

// IsPublished reports whether the page has a publish date at or before at.
func (p Page) IsPublished(at time.Time) bool {
	return p.PublishState(at) == domain.StatePublished
}

// PublishState derives the lifecycle state at the given instant.
func (p Page) PublishState(at time.Time) domain.PublishState {
	return domain.PublishStateAt(p.PublishedDate, at)
}

// Clone returns a deep copy of the page.
func (p Page) Clone() Page {
	cloned := p
	cloned.Graphic.Upload = p.Graphic.Upload.Clone()
	cloned.HeaderBgImage.Upload = p.HeaderBgImage.Upload.Clone()
	cloned.HeaderLogo.Upload = p.HeaderLogo.Upload.Clone()
	if p.PublishedDate != nil {
		published := *p.PublishedDate
		cloned.PublishedDate = &published
	}
	if p.StyleID != nil {
		id := *p.StyleID
		cloned.StyleID = &id
	}
	if p.Styles != nil {
		style := p.Styles.Clone()
		cloned.Styles = &style
	}
	cloned.Elements = blocks.CloneList(p.Elements)
	cloned.SidebarElements = blocks.CloneList(p.SidebarElements)
	return cloned
}

// CreatePageRequest captures the fields required to create a page.
type CreatePageRequest struct {
	// ID is optional; seeded pages carry a deterministic identifier.
	ID              uuid.UUID       `json:"id,omitempty"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	Heading         string          `json:"heading"`
	RevenueProgram  RevenueProgram  `json:"revenue_program"`
	PaymentProvider PaymentProvider `json:"payment_provider"`
	Elements        []blocks.Block  `json:"elements"`
	SidebarElements []blocks.Block  `json:"sidebar_elements"`
	Locale          string          `json:"locale"`
}

// DeletePageRequest identifies a page to delete. Published pages require an
// explicit confirmation.
type DeletePageRequest struct {
	ID        uuid.UUID
	Confirmed bool
}
