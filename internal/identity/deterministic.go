package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must prefix keys by entity type to avoid cross-entity collisions.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ContributorToken derives the opaque contributor identifier carried as the
// uid parameter of the payment success redirect. The email is normalised so
// casing and surrounding whitespace do not change the token.
func ContributorToken(salt, email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return ""
	}
	id := UUID("donations:contributor:" + strings.TrimSpace(salt) + ":" + normalized)
	return strings.ReplaceAll(id.String(), "-", "")
}

// TemplatePageUUID derives the page identifier for a page seeded from a template.
func TemplatePageUUID(revenueProgramSlug, templateSlug string) uuid.UUID {
	return UUID("donations:template_page:" + strings.ToLower(strings.TrimSpace(revenueProgramSlug)) + ":" + strings.ToLower(strings.TrimSpace(templateSlug)))
}

// BlockUUID derives a stable block identifier for template-seeded blocks.
func BlockUUID(pageID uuid.UUID, position int, blockType string) uuid.UUID {
	return UUID("donations:block:" + pageID.String() + ":" + strings.TrimSpace(blockType) + ":" + strconv.Itoa(position))
}
