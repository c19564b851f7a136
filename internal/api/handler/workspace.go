package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nantutech/ntcore/internal/api/request"
	"github.com/nantutech/ntcore/internal/api/response"
	"github.com/nantutech/ntcore/internal/core"
	"github.com/nantutech/ntcore/internal/model"
	"github.com/nantutech/ntcore/internal/platform"
)

type Workspace struct {
	svc *core.WorkspaceService
}

func NewWorkspace(services *core.Services) *Workspace {
	return &Workspace{svc: services.Workspace}
}

func (h *Workspace) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateWorkspace
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ws := &model.Workspace{
		ID:        platform.NewName("ws_"),
		Name:      req.Name,
		Type:      req.Type,
		CreatedBy: req.CreatedBy,
	}
	if err := h.svc.Create(r.Context(), ws); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	created, err := h.svc.GetByID(r.Context(), ws.ID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, created)
}

func (h *Workspace) List(w http.ResponseWriter, r *http.Request) {
	workspaces, err := h.svc.List(r.Context())
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	if workspaces == nil {
		workspaces = []model.Workspace{}
	}
	response.WriteJSON(w, http.StatusOK, workspaces)
}

func (h *Workspace) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ws, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, ws)
}

func (h *Workspace) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
