package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nantutech/ntcore/internal/api/request"
	"github.com/nantutech/ntcore/internal/api/response"
	"github.com/nantutech/ntcore/internal/core"
	"github.com/nantutech/ntcore/internal/model"
)

type Deployment struct {
	svc      *core.DeploymentService
	services *core.Services
}

func NewDeployment(services *core.Services) *Deployment {
	return &Deployment{svc: services.Deployment, services: services}
}

// Create deploys a model version: it takes the workspace's deployment
// lock, records a pending deployment, and starts the deploy workflow.
func (h *Deployment) Create(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := request.RequireID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.CreateDeployment
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The workspace must exist before we take its lock.
	if _, err := h.services.Workspace.GetByID(r.Context(), workspaceID); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	d, err := h.svc.Deploy(r.Context(), workspaceID, req.Version, req.CreatedBy)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusAccepted, d)
}

func (h *Deployment) ListByWorkspace(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := request.RequireID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	deployments, err := h.svc.ListByWorkspace(r.Context(), workspaceID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	if deployments == nil {
		deployments = []model.Deployment{}
	}
	response.WriteJSON(w, http.StatusOK, deployments)
}

func (h *Deployment) GetActive(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := request.RequireID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.svc.GetActive(r.Context(), workspaceID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, d)
}

func (h *Deployment) GetLatest(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := request.RequireID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.svc.GetLatest(r.Context(), workspaceID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, d)
}

func (h *Deployment) Get(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := request.RequireID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	deploymentID, err := request.RequireID(chi.URLParam(r, "deploymentID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.svc.GetByID(r.Context(), workspaceID, deploymentID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, d)
}

// Stop starts the stop workflow for a deployment.
func (h *Deployment) Stop(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := request.RequireID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	deploymentID, err := request.RequireID(chi.URLParam(r, "deploymentID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Stop(r.Context(), workspaceID, deploymentID); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ListActive lists running deployments across all workspaces. Fleet
// reconcilers use it to compare desired serving state against reality.
func (h *Deployment) ListActive(w http.ResponseWriter, r *http.Request) {
	deployments, err := h.svc.ListActive(r.Context())
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	if deployments == nil {
		deployments = []model.Deployment{}
	}
	response.WriteJSON(w, http.StatusOK, deployments)
}
