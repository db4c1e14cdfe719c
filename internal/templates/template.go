package templates

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-donation-pages/internal/blocks"
	"github.com/goliatone/go-donation-pages/internal/identity"
	"github.com/goliatone/go-donation-pages/internal/pages"
)

var (
	// ErrNameRequired indicates a template without a name.
	ErrNameRequired = errors.New("templates: name is required")
	// ErrDuplicateSlug indicates two templates resolving to the same slug.
	ErrDuplicateSlug = errors.New("templates: duplicate template slug")
	// ErrBlockInvalid wraps a malformed block entry.
	ErrBlockInvalid = errors.New("templates: invalid block")
)

// Template is a page blueprint read from a markdown file with YAML
// frontmatter. The markdown body becomes a trailing rich-text block.
type Template struct {
	Path            string
	Name            string
	Slug            string
	Heading         string
	Locale          string
	Elements        []blocks.Block
	SidebarElements []blocks.Block
	Body            string
}

type frontMatterEnvelope struct {
	Name     string      `yaml:"name"`
	Slug     string      `yaml:"slug"`
	Heading  string      `yaml:"heading"`
	Locale   string      `yaml:"locale"`
	Elements []blockSpec `yaml:"elements"`
	Sidebar  []blockSpec `yaml:"sidebar_elements"`
}

type blockSpec struct {
	Type           string   `yaml:"type"`
	Content        any      `yaml:"content"`
	RequiredFields []string `yaml:"required_fields"`
}

// Parse reads a template document. Blocks come back without identifiers;
// Instantiate assigns them.
func Parse(path string, source []byte) (*Template, error) {
	var meta frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter %s: %w", path, err)
	}

	name := strings.TrimSpace(meta.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: %s", ErrNameRequired, path)
	}
	rawSlug := meta.Slug
	if strings.TrimSpace(rawSlug) == "" {
		rawSlug = name
	}
	normalized, err := slug.Normalize(rawSlug)
	if err != nil || normalized == "" {
		return nil, fmt.Errorf("%w: %s", pages.ErrSlugInvalid, path)
	}

	elements, err := decodeBlocks(path, meta.Elements)
	if err != nil {
		return nil, err
	}
	sidebar, err := decodeBlocks(path, meta.Sidebar)
	if err != nil {
		return nil, err
	}

	return &Template{
		Path:            path,
		Name:            name,
		Slug:            normalized,
		Heading:         meta.Heading,
		Locale:          meta.Locale,
		Elements:        elements,
		SidebarElements: sidebar,
		Body:            strings.TrimSpace(string(body)),
	}, nil
}

func decodeBlocks(path string, specs []blockSpec) ([]blocks.Block, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]blocks.Block, 0, len(specs))
	for i, spec := range specs {
		blockType, err := blocks.ParseType(spec.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %s #%d: %v", ErrBlockInvalid, path, i, err)
		}
		raw, err := json.Marshal(normalizeYAML(spec.Content))
		if err != nil {
			return nil, fmt.Errorf("%w: %s #%d: %v", ErrBlockInvalid, path, i, err)
		}
		content, err := blocks.DecodeContent(blockType, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s #%d: %v", ErrBlockInvalid, path, i, err)
		}
		out = append(out, blocks.Block{
			Type:           blockType,
			Content:        content,
			RequiredFields: append([]string(nil), spec.RequiredFields...),
		})
	}
	return out, nil
}

// normalizeYAML rewrites interface-keyed maps so the value can be JSON encoded.
func normalizeYAML(value any) any {
	switch typed := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalizeYAML(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return value
	}
}

// PageID is the deterministic identifier of the page this template seeds
// for a revenue program.
func (t *Template) PageID(revenueProgramSlug string) uuid.UUID {
	return identity.TemplatePageUUID(revenueProgramSlug, t.Slug)
}

// Instantiate builds a create request for the revenue program. Identifiers
// are derived from the program and template slugs so reseeding is stable.
func (t *Template) Instantiate(program pages.RevenueProgram, provider pages.PaymentProvider) pages.CreatePageRequest {
	pageID := t.PageID(program.Slug)

	elements := blocks.CloneList(t.Elements)
	if t.Body != "" {
		elements = append(elements, blocks.Block{
			Type:    blocks.TypeRichText,
			Content: blocks.TextContent(t.Body),
		})
	}
	sidebar := blocks.CloneList(t.SidebarElements)

	position := 0
	for i := range elements {
		elements[i].UUID = identity.BlockUUID(pageID, position, string(elements[i].Type)).String()
		position++
	}
	for i := range sidebar {
		sidebar[i].UUID = identity.BlockUUID(pageID, position, string(sidebar[i].Type)).String()
		position++
	}

	return pages.CreatePageRequest{
		ID:              pageID,
		Name:            t.Name,
		Slug:            t.Slug,
		Heading:         t.Heading,
		RevenueProgram:  program,
		PaymentProvider: provider,
		Elements:        elements,
		SidebarElements: sidebar,
		Locale:          t.Locale,
	}
}
