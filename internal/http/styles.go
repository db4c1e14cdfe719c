package http

import (
	"net/http"

	"github.com/goliatone/go-donation-pages/internal/permissions"
	"github.com/goliatone/go-donation-pages/internal/styles"
)

type styleUpdatePayload struct {
	Name   string         `json:"name"`
	Styles map[string]any `json:"styles"`
}

func (api *API) registerStyleRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "styles")
	mux.HandleFunc("GET "+root, api.handleStyleList)
	mux.HandleFunc("POST "+root, api.handleStyleCreate)
	mux.HandleFunc("GET "+root+"/{id}", api.handleStyleGet)
	mux.HandleFunc("PATCH "+root+"/{id}", api.handleStyleUpdate)
}

func (api *API) handleStyleList(w http.ResponseWriter, r *http.Request) {
	if api.styles == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "service_unavailable"})
		return
	}
	if !requirePermission(w, r, permissions.StylesRead) {
		return
	}
	programID, err := parseInt64(r.URL.Query().Get("revenue_program"))
	if err != nil {
		badRequest(w, "revenue_program query parameter is required")
		return
	}
	list, err := api.styles.ListForRevenueProgram(r.Context(), programID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (api *API) handleStyleGet(w http.ResponseWriter, r *http.Request) {
	if api.styles == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "service_unavailable"})
		return
	}
	if !requirePermission(w, r, permissions.StylesRead) {
		return
	}
	id, err := parseInt64(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	record, err := api.styles.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handleStyleCreate(w http.ResponseWriter, r *http.Request) {
	if api.styles == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "service_unavailable"})
		return
	}
	if !requirePermission(w, r, permissions.StylesCreate) {
		return
	}
	var payload styles.CreateStyleRequest
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, err.Error())
		return
	}
	record, err := api.styles.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (api *API) handleStyleUpdate(w http.ResponseWriter, r *http.Request) {
	if api.styles == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "service_unavailable"})
		return
	}
	if !requirePermission(w, r, permissions.StylesUpdate) {
		return
	}
	id, err := parseInt64(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	var payload styleUpdatePayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, err.Error())
		return
	}
	record, err := api.styles.Update(r.Context(), styles.UpdateStyleRequest{
		ID:     id,
		Name:   payload.Name,
		Styles: payload.Styles,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}
