package core

import (
	"time"

	temporalclient "go.temporal.io/sdk/client"
)

// taskQueue is the Temporal task queue shared by the API and the worker.
const taskQueue = "ntcore-tasks"

type Services struct {
	Workspace      *WorkspaceService
	Deployment     *DeploymentService
	DeploymentLock *DeploymentLockService
	Experiment     *ExperimentService
	APIKey         *APIKeyService
}

func NewServices(db DB, tc temporalclient.Client, lockTTL time.Duration) *Services {
	locks := NewDeploymentLockService(db, lockTTL)
	return &Services{
		Workspace:      NewWorkspaceService(db),
		Deployment:     NewDeploymentService(db, tc, locks),
		DeploymentLock: locks,
		Experiment:     NewExperimentService(db),
		APIKey:         NewAPIKeyService(db),
	}
}
