package di

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"

	"github.com/google/uuid"

	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/internal/requestbody"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

const localMaxMemory = 32 << 20

// localPageStore applies editor saves to the in-process page service. The
// body takes the same multipart round trip the HTTP API performs so both
// paths decode identically.
type localPageStore struct {
	pages  pages.Service
	assets pages.AssetStore
	logger interfaces.Logger
}

func newLocalPageStore(svc pages.Service, assets pages.AssetStore, logger interfaces.Logger) *localPageStore {
	return &localPageStore{pages: svc, assets: assets, logger: logging.Ensure(logger)}
}

func (s *localPageStore) GetPage(ctx context.Context, id uuid.UUID) (*pages.Page, error) {
	return s.pages.Get(ctx, id)
}

func (s *localPageStore) UpdatePage(ctx context.Context, id uuid.UUID, body *requestbody.Body) (*pages.Page, error) {
	form, err := roundTrip(body)
	if err != nil {
		return nil, err
	}
	defer form.RemoveAll()

	update, err := requestbody.Decode(form)
	if err != nil {
		return nil, err
	}

	upload, err := requestbody.DecodeScreenshot(form)
	if err != nil {
		return nil, err
	}

	updated, err := s.pages.ApplyUpdate(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if upload != nil && s.assets != nil {
		if _, err := s.assets.Put(ctx, "screenshots/"+id.String(), upload); err != nil && !errors.Is(err, pages.ErrUploadEmpty) {
			s.logger.Warn("page screenshot not stored", "page_id", id.String(), "error", err)
		}
	}
	return updated, nil
}

func roundTrip(body *requestbody.Body) (*multipart.Form, error) {
	contentType, payload, err := body.Encode()
	if err != nil {
		return nil, err
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("di: parse content type: %w", err)
	}
	reader := multipart.NewReader(bytes.NewReader(payload), params["boundary"])
	return reader.ReadForm(localMaxMemory)
}
