package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/nantutech/ntcore/internal/activity"
)

// DeployWorkflow drives one deployment from pending to running: pull the
// model image, start the serving container, then promote the deployment.
// The workspace's deployment lock is held for the whole workflow and is
// released in every exit path.
func DeployWorkflow(ctx workflow.Context, workspaceID, deploymentID string) error {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:    3,
			InitialInterval:    1 * time.Second,
			MaximumInterval:    10 * time.Second,
			BackoffCoefficient: 2.0,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	ref := activity.DeploymentRefParams{WorkspaceID: workspaceID, DeploymentID: deploymentID}

	var dc activity.DeploymentContext
	err := workflow.ExecuteActivity(ctx, "GetDeploymentContext", ref).Get(ctx, &dc)
	if err != nil {
		return failDeploy(ctx, ref, err)
	}

	// Image pulls can be slow on cold nodes; give them a longer window.
	pullCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy:         ao.RetryPolicy,
	})
	var digest string
	err = workflow.ExecuteActivity(pullCtx, "PullModelImage", activity.PullModelImageParams{
		WorkspaceID: workspaceID,
		Version:     dc.Deployment.Version,
	}).Get(ctx, &digest)
	if err != nil {
		return failDeploy(ctx, ref, err)
	}

	var created activity.CreateServingContainerResult
	err = workflow.ExecuteActivity(ctx, "CreateServingContainer", activity.CreateServingContainerParams{
		WorkspaceID:   workspaceID,
		DeploymentID:  deploymentID,
		Version:       dc.Deployment.Version,
		WorkspaceType: dc.Workspace.Type,
	}).Get(ctx, &created)
	if err != nil {
		return failDeploy(ctx, ref, err)
	}

	// Promotion demotes any previously running deployment in the same
	// statement, so the container swap and the status swap stay aligned.
	if err := workflow.ExecuteActivity(ctx, "PromoteDeployment", ref).Get(ctx, nil); err != nil {
		// The container is up but the row never became running; tear the
		// container down so serving state matches the database.
		_ = workflow.ExecuteActivity(ctx, "RemoveServingContainer", workspaceID).Get(ctx, nil)
		return failDeploy(ctx, ref, err)
	}

	return workflow.ExecuteActivity(ctx, "ReleaseDeploymentLock", workspaceID).Get(ctx, nil)
}

// failDeploy demotes the deployment and releases the workspace lock,
// best effort, then returns the original error.
func failDeploy(ctx workflow.Context, ref activity.DeploymentRefParams, cause error) error {
	_ = workflow.ExecuteActivity(ctx, "DemoteDeployment", ref).Get(ctx, nil)
	_ = workflow.ExecuteActivity(ctx, "ReleaseDeploymentLock", ref.WorkspaceID).Get(ctx, nil)
	return cause
}

// StopDeploymentWorkflow stops serving for a workspace: stop and remove
// the serving container, then demote the deployment to stopped.
func StopDeploymentWorkflow(ctx workflow.Context, workspaceID, deploymentID string) error {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:    3,
			InitialInterval:    1 * time.Second,
			MaximumInterval:    10 * time.Second,
			BackoffCoefficient: 2.0,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	if err := workflow.ExecuteActivity(ctx, "StopServingContainer", workspaceID).Get(ctx, nil); err != nil {
		return err
	}
	if err := workflow.ExecuteActivity(ctx, "RemoveServingContainer", workspaceID).Get(ctx, nil); err != nil {
		return err
	}
	return workflow.ExecuteActivity(ctx, "DemoteDeployment", activity.DeploymentRefParams{
		WorkspaceID:  workspaceID,
		DeploymentID: deploymentID,
	}).Get(ctx, nil)
}
