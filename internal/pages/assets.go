package pages

import (
	"context"
	"errors"
	"path"
	"strings"
	"sync"

	"github.com/goliatone/go-donation-pages/internal/domain"
)

// ErrUploadEmpty is returned when an asset store receives no bytes.
var ErrUploadEmpty = errors.New("pages: upload is empty")

// Asset is a stored image and its derived thumbnail reference.
type Asset struct {
	Ref       string
	Thumbnail string
}

// AssetStore persists uploaded images and derives their thumbnails.
type AssetStore interface {
	Put(ctx context.Context, key string, upload *domain.Upload) (Asset, error)
}

// MemoryAssetStore keeps uploads in memory under a media prefix. Each key
// holds one upload; a new Put under the same key replaces the previous one.
type MemoryAssetStore struct {
	mu      sync.RWMutex
	prefix  string
	objects map[string]domain.Upload
	refs    map[string]string
}

// NewMemoryAssetStore constructs an asset store rooted at prefix.
func NewMemoryAssetStore(prefix string) *MemoryAssetStore {
	if strings.TrimSpace(prefix) == "" {
		prefix = "/media"
	}
	return &MemoryAssetStore{
		prefix:  prefix,
		objects: make(map[string]domain.Upload),
		refs:    make(map[string]string),
	}
}

// Put stores upload under key and returns its reference.
func (s *MemoryAssetStore) Put(_ context.Context, key string, upload *domain.Upload) (Asset, error) {
	if upload.Empty() {
		return Asset{}, ErrUploadEmpty
	}
	filename := path.Base(strings.TrimSpace(upload.Filename))
	if filename == "" || filename == "." || filename == "/" {
		filename = "upload"
	}
	ref := path.Join(s.prefix, key, filename)
	thumbnail := path.Join(s.prefix, key, "thumb_"+filename)

	s.mu.Lock()
	defer s.mu.Unlock()
	if previous, ok := s.refs[key]; ok && previous != ref {
		delete(s.objects, previous)
	}
	s.refs[key] = ref
	s.objects[ref] = *upload.Clone()
	return Asset{Ref: ref, Thumbnail: thumbnail}, nil
}

// Get returns a stored upload by reference.
func (s *MemoryAssetStore) Get(ref string) (domain.Upload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	upload, ok := s.objects[ref]
	if !ok {
		return domain.Upload{}, false
	}
	return *upload.Clone(), true
}
