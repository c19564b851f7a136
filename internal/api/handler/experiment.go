package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nantutech/ntcore/internal/api/request"
	"github.com/nantutech/ntcore/internal/api/response"
	"github.com/nantutech/ntcore/internal/core"
	"github.com/nantutech/ntcore/internal/model"
)

type Experiment struct {
	svc      *core.ExperimentService
	services *core.Services
}

func NewExperiment(services *core.Services) *Experiment {
	return &Experiment{svc: services.Experiment, services: services}
}

// Register marks a model version as the workspace's serving candidate.
// Registering again replaces the previous registration.
func (h *Experiment) Register(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := request.RequireID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.RegisterExperiment
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The registration row has a foreign key on workspaces; check first
	// so an absent workspace reads as 404 rather than 500.
	if _, err := h.services.Workspace.GetByID(r.Context(), workspaceID); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	exp := &model.RegisteredExperiment{
		WorkspaceID: workspaceID,
		Version:     req.Version,
		Runtime:     req.Runtime,
		Framework:   req.Framework,
	}
	if err := h.svc.Register(r.Context(), exp); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, exp)
}

func (h *Experiment) Get(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := request.RequireID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	exp, err := h.svc.GetRegistered(r.Context(), workspaceID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, exp)
}

func (h *Experiment) Unregister(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := request.RequireID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Unregister(r.Context(), workspaceID); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
