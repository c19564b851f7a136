package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/nantutech/ntcore/internal/core"
	"github.com/nantutech/ntcore/internal/model"
)

// CoreDB contains activities that read from and update the core database.
// All status writes go through core.DeploymentService so the single-
// statement transition semantics hold no matter who drives them.
type CoreDB struct {
	services *core.Services
}

func NewCoreDB(services *core.Services) *CoreDB {
	return &CoreDB{services: services}
}

// DeploymentRefParams identifies one deployment.
type DeploymentRefParams struct {
	WorkspaceID  string `json:"workspace_id"`
	DeploymentID string `json:"deployment_id"`
}

// DeploymentContext bundles the deployment and its owning workspace for
// workflows, fetched in a single activity.
type DeploymentContext struct {
	Deployment model.Deployment `json:"deployment"`
	Workspace  model.Workspace  `json:"workspace"`
}

// GetDeploymentContext fetches a deployment and its workspace.
func (a *CoreDB) GetDeploymentContext(ctx context.Context, params DeploymentRefParams) (*DeploymentContext, error) {
	d, err := a.services.Deployment.GetByID(ctx, params.WorkspaceID, params.DeploymentID)
	if err != nil {
		return nil, err
	}
	ws, err := a.services.Workspace.GetByID(ctx, params.WorkspaceID)
	if err != nil {
		return nil, err
	}
	return &DeploymentContext{Deployment: *d, Workspace: *ws}, nil
}

// PromoteDeployment moves the deployment to running, demoting any other
// in-flight deployment in the workspace in the same statement.
func (a *CoreDB) PromoteDeployment(ctx context.Context, params DeploymentRefParams) error {
	err := a.services.Deployment.UpdateStatus(ctx, params.WorkspaceID, params.DeploymentID, model.StatusRunning)
	if err != nil {
		return fmt.Errorf("promote deployment %s: %w", params.DeploymentID, err)
	}
	return nil
}

// DemoteDeployment moves the deployment to stopped. A deployment that is
// already stopped is left alone; demotion is idempotent from the
// workflow's point of view, so ErrNoOpTransition is not an error here.
func (a *CoreDB) DemoteDeployment(ctx context.Context, params DeploymentRefParams) error {
	err := a.services.Deployment.UpdateStatus(ctx, params.WorkspaceID, params.DeploymentID, model.StatusStopped)
	if err != nil && !errors.Is(err, core.ErrNoOpTransition) {
		return fmt.Errorf("demote deployment %s: %w", params.DeploymentID, err)
	}
	return nil
}

// ReleaseDeploymentLock releases the workspace's deployment lock.
func (a *CoreDB) ReleaseDeploymentLock(ctx context.Context, workspaceID string) error {
	return a.services.DeploymentLock.Release(ctx, workspaceID)
}
