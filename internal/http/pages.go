package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-donation-pages/internal/domain"
	"github.com/goliatone/go-donation-pages/internal/logging"
	"github.com/goliatone/go-donation-pages/internal/pages"
	"github.com/goliatone/go-donation-pages/internal/permissions"
	"github.com/goliatone/go-donation-pages/internal/requestbody"
	"github.com/goliatone/go-donation-pages/pkg/interfaces"
)

func (api *API) registerPageRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "pages")
	mux.HandleFunc("GET "+root, api.handlePageList)
	mux.HandleFunc("GET "+root+"/{id}", api.handlePageGet)
	mux.HandleFunc("PATCH "+root+"/{id}", api.handlePageUpdate)
	mux.HandleFunc("DELETE "+root+"/{id}", api.handlePageDelete)
}

func (api *API) handlePageList(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "service_unavailable"})
		return
	}
	if !requirePermission(w, r, permissions.PagesRead) {
		return
	}
	list, err := api.pages.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *API) handlePageGet(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "service_unavailable"})
		return
	}
	if !requirePermission(w, r, permissions.PagesRead) {
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	record, err := api.pages.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handlePageUpdate applies a multipart partial update. Publishing through
// this route additionally requires the publish permission.
func (api *API) handlePageUpdate(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "service_unavailable"})
		return
	}
	if !requirePermission(w, r, permissions.PagesUpdate) {
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		writeJSON(w, http.StatusUnsupportedMediaType, ErrorResponse{Error: "unsupported_media_type", Message: "expected multipart/form-data"})
		return
	}
	if err := r.ParseMultipartForm(api.maxMemory); err != nil {
		badRequest(w, err.Error())
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	update, err := requestbody.Decode(r.MultipartForm)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if update.PublishedDate.Present() && !requirePermission(w, r, permissions.PagesPublish) {
		return
	}

	screenshot, err := requestbody.DecodeScreenshot(r.MultipartForm)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	logger := logging.WithPageContext(api.logger, id.String(), "", "page.update")
	updated, err := api.pages.ApplyUpdate(r.Context(), id, update)
	if err != nil {
		logger.Warn("page update rejected", "error", err)
		writeError(w, err)
		return
	}
	api.storeScreenshot(r.Context(), id, screenshot, logger)
	writeJSON(w, http.StatusOK, updated)
}

// storeScreenshot runs after the update is accepted. The page is already
// saved at that point, so a storage failure is logged rather than returned.
func (api *API) storeScreenshot(ctx context.Context, id uuid.UUID, upload *domain.Upload, logger interfaces.Logger) {
	if upload == nil {
		return
	}
	if api.assets == nil {
		logger.Debug("page screenshot ignored", "filename", upload.Filename)
		return
	}
	asset, err := api.assets.Put(ctx, "screenshots/"+id.String(), upload)
	if err != nil {
		if !errors.Is(err, pages.ErrUploadEmpty) {
			logger.Warn("page screenshot not stored", "error", err)
		}
		return
	}
	logger.Debug("page screenshot stored", "ref", asset.Ref)
}

func (api *API) handlePageDelete(w http.ResponseWriter, r *http.Request) {
	if api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "service_unavailable"})
		return
	}
	if !requirePermission(w, r, permissions.PagesDelete) {
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	req := pages.DeletePageRequest{
		ID:        id,
		Confirmed: parseBoolQuery(r.URL.Query().Get("confirmed"), false),
	}
	if err := api.pages.Delete(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
