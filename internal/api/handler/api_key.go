package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nantutech/ntcore/internal/api/request"
	"github.com/nantutech/ntcore/internal/api/response"
	"github.com/nantutech/ntcore/internal/core"
)

type APIKey struct {
	svc *core.APIKeyService
}

func NewAPIKey(services *core.Services) *APIKey {
	return &APIKey{svc: services.APIKey}
}

// Create mints a new API key. The raw key appears in this response only;
// the database stores its hash.
func (h *APIKey) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAPIKey
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, rawKey, err := h.svc.Create(r.Context(), req.Name)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, map[string]any{
		"api_key": key,
		"key":     rawKey,
	})
}

func (h *APIKey) Revoke(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Revoke(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
