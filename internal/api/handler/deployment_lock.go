package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nantutech/ntcore/internal/api/request"
	"github.com/nantutech/ntcore/internal/api/response"
	"github.com/nantutech/ntcore/internal/core"
)

type DeploymentLock struct {
	svc *core.DeploymentLockService
}

func NewDeploymentLock(services *core.Services) *DeploymentLock {
	return &DeploymentLock{svc: services.DeploymentLock}
}

func (h *DeploymentLock) Get(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := request.RequireID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	lock, err := h.svc.GetByWorkspace(r.Context(), workspaceID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, lock)
}

// Delete force-releases a workspace's deployment lock. Operators use it
// when a deploy workflow died without cleaning up before the TTL runs out.
func (h *DeploymentLock) Delete(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := request.RequireID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Release(r.Context(), workspaceID); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
