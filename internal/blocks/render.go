package blocks

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

func renderRichText(block Block) (string, error) {
	text, _ := block.Content.(TextContent)
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("blocks: render rich text %s: %w", block.UUID, err)
	}
	return wrapFragment(block, buf.String()), nil
}

func renderImage(block Block) (string, error) {
	image, _ := block.Content.(ImageContent)
	if !image.Upload.Empty() {
		return wrapFragment(block, fmt.Sprintf(`<p class="pending-upload">%s</p>`, html.EscapeString(image.Upload.Filename))), nil
	}
	if image.Ref == "" {
		return wrapFragment(block, ""), nil
	}
	return wrapFragment(block, fmt.Sprintf(`<img src="%s" alt="">`, html.EscapeString(image.Ref))), nil
}

func renderFragment(block Block) (string, error) {
	var inner string
	if len(block.RequiredFields) > 0 {
		inner = fmt.Sprintf(`<p class="required">%s</p>`, html.EscapeString(strings.Join(block.RequiredFields, ", ")))
	}
	return wrapFragment(block, inner), nil
}

func wrapFragment(block Block, inner string) string {
	return fmt.Sprintf(`<section class="block block-%s" data-uuid="%s">%s</section>`,
		html.EscapeString(string(block.Type)), html.EscapeString(block.UUID), inner)
}

var documentTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<div id="page-preview">
<header><h1>{{.Title}}</h1></header>
<main>{{range .Main}}{{.}}{{end}}</main>
<aside>{{range .Sidebar}}{{.}}{{end}}</aside>
</div>
</body>
</html>
`))

// RenderDocument renders a standalone preview document for a page. The
// result is what screenshot capture rasterizes.
func (r *Registry) RenderDocument(title string, main, sidebar []Block) (string, error) {
	renderList := func(list []Block) ([]template.HTML, error) {
		out := make([]template.HTML, 0, len(list))
		for _, block := range list {
			fragment, err := r.Render(block)
			if err != nil {
				return nil, err
			}
			// fragments are escaped by their renderers
			out = append(out, template.HTML(fragment))
		}
		return out, nil
	}

	mainHTML, err := renderList(main)
	if err != nil {
		return "", err
	}
	sidebarHTML, err := renderList(sidebar)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = documentTemplate.Execute(&buf, struct {
		Title   string
		Main    []template.HTML
		Sidebar []template.HTML
	}{Title: title, Main: mainHTML, Sidebar: sidebarHTML})
	if err != nil {
		return "", fmt.Errorf("blocks: render document: %w", err)
	}
	return buf.String(), nil
}
