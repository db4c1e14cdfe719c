package templates

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

// LoaderConfig configures template discovery.
type LoaderConfig struct {
	// BasePath is the directory inside the filesystem holding templates.
	BasePath string
	// Pattern limits discovered files (defaults to "*.md").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// Loader reads page templates from a filesystem.
type Loader struct {
	fs        fs.FS
	basePath  string
	pattern   string
	recursive bool
	logger    interfaces.Logger
}

// NewLoader constructs a Loader over filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig, logger interfaces.Logger) *Loader {
	pattern := cfg.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = "*.md"
	}
	base := path.Clean(strings.TrimSpace(cfg.BasePath))
	if base == "" || base == "/" {
		base = "."
	}
	return &Loader{
		fs:        filesystem,
		basePath:  strings.TrimPrefix(base, "/"),
		pattern:   pattern,
		recursive: cfg.Recursive,
		logger:    logging.Ensure(logger),
	}
}

// LoadFile parses a single template relative to the filesystem root.
func (l *Loader) LoadFile(ctx context.Context, name string) (*Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("template loader read %s: %w", name, err)
	}
	return Parse(name, data)
}

// Load discovers every template under the base path, sorted by slug.
func (l *Loader) Load(ctx context.Context) ([]*Template, error) {
	var results []*Template
	seen := map[string]string{}

	walkErr := fs.WalkDir(l.fs, l.basePath, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if !l.recursive && current != l.basePath {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if match, err := path.Match(l.pattern, path.Base(current)); err != nil || !match {
			return nil
		}

		tpl, err := l.LoadFile(ctx, current)
		if err != nil {
			return err
		}
		if previous, ok := seen[tpl.Slug]; ok {
			return fmt.Errorf("%w: %q in %s and %s", ErrDuplicateSlug, tpl.Slug, previous, current)
		}
		seen[tpl.Slug] = current
		results = append(results, tpl)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Slug < results[j].Slug
	})
	l.logger.Debug("templates loaded", "count", len(results), "base", l.basePath)
	return results, nil
}

// Seed creates a page for every template that the revenue program does not
// have yet. Existing pages are left untouched.
func Seed(ctx context.Context, svc pages.Service, program pages.RevenueProgram, provider pages.PaymentProvider, templates []*Template) ([]*pages.Page, error) {
	var created []*pages.Page
	for _, tpl := range templates {
		if tpl == nil {
			continue
		}
		_, err := svc.Get(ctx, tpl.PageID(program.Slug))
		if err == nil {
			continue
		}
		if !errors.Is(err, pages.ErrPageNotFound) {
			return created, err
		}
		page, err := svc.Create(ctx, tpl.Instantiate(program, provider))
		if err != nil {
			return created, fmt.Errorf("seed template %s: %w", tpl.Slug, err)
		}
		created = append(created, page)
	}
	return created, nil
}
