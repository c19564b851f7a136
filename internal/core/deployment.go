package core

import (
	"context"
	"fmt"

	temporalclient "go.temporal.io/sdk/client"

	"github.com/nantutech/ntcore/internal/model"
	"github.com/nantutech/ntcore/internal/platform"
)

// DeploymentService owns the deployment records and their lifecycle.
// Together with DeploymentLockService it is the only writer of the
// deployments table.
type DeploymentService struct {
	db    DB
	tc    temporalclient.Client
	locks *DeploymentLockService
}

func NewDeploymentService(db DB, tc temporalclient.Client, locks *DeploymentLockService) *DeploymentService {
	return &DeploymentService{db: db, tc: tc, locks: locks}
}

const deploymentColumns = `id, workspace_id, version, status, created_by, created_at, updated_at`

func scanDeployment(row interface{ Scan(dest ...any) error }) (model.Deployment, error) {
	var d model.Deployment
	err := row.Scan(&d.ID, &d.WorkspaceID, &d.Version, &d.Status, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return d, err
	}
	return d, nil
}

// Create inserts a new deployment row, normally with status pending while
// the workspace's deployment lock is held. Returns ErrDuplicateDeployment
// when (id, workspace_id) already exists.
func (s *DeploymentService) Create(ctx context.Context, d *model.Deployment) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO deployments (id, workspace_id, version, status, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now(), now())`,
		d.ID, d.WorkspaceID, d.Version, d.Status, d.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("deployment %s in workspace %s: %w", d.ID, d.WorkspaceID, ErrDuplicateDeployment)
		}
		return fmt.Errorf("insert deployment: %w", err)
	}
	return nil
}

// GetByID returns a specific deployment or ErrNotFound.
func (s *DeploymentService) GetByID(ctx context.Context, workspaceID, id string) (*model.Deployment, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+deploymentColumns+` FROM deployments WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	)
	d, err := scanDeployment(row)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("deployment %s in workspace %s: %w", id, workspaceID, ErrNotFound)
		}
		return nil, fmt.Errorf("get deployment %s: %w", id, err)
	}
	return &d, nil
}

// GetActive returns the running deployment for a workspace, or ErrNotFound.
// By invariant at most one running row exists; the query still orders
// newest-first so a violated invariant yields the most recent one rather
// than an arbitrary pick.
func (s *DeploymentService) GetActive(ctx context.Context, workspaceID string) (*model.Deployment, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+deploymentColumns+` FROM deployments
		 WHERE workspace_id = $1 AND status = 'running'
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`, workspaceID,
	)
	d, err := scanDeployment(row)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("active deployment for workspace %s: %w", workspaceID, ErrNotFound)
		}
		return nil, fmt.Errorf("get active deployment for workspace %s: %w", workspaceID, err)
	}
	return &d, nil
}

// GetLatest returns the most recently created deployment for a workspace
// regardless of status, or ErrNotFound when the workspace has none.
func (s *DeploymentService) GetLatest(ctx context.Context, workspaceID string) (*model.Deployment, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+deploymentColumns+` FROM deployments
		 WHERE workspace_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`, workspaceID,
	)
	d, err := scanDeployment(row)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("latest deployment for workspace %s: %w", workspaceID, ErrNotFound)
		}
		return nil, fmt.Errorf("get latest deployment for workspace %s: %w", workspaceID, err)
	}
	return &d, nil
}

// ListByWorkspace returns all deployments for a workspace, most recent first.
func (s *DeploymentService) ListByWorkspace(ctx context.Context, workspaceID string) ([]model.Deployment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+deploymentColumns+` FROM deployments
		 WHERE workspace_id = $1
		 ORDER BY created_at DESC, id DESC`, workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list deployments for workspace %s: %w", workspaceID, err)
	}
	defer rows.Close()

	var deployments []model.Deployment
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deployment: %w", err)
		}
		deployments = append(deployments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deployments: %w", err)
	}
	return deployments, nil
}

// ListActive returns every running deployment across all workspaces, most
// recent first. Used for fleet-wide reconciliation.
func (s *DeploymentService) ListActive(ctx context.Context) ([]model.Deployment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+deploymentColumns+` FROM deployments
		 WHERE status = 'running'
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list active deployments: %w", err)
	}
	defer rows.Close()

	var deployments []model.Deployment
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deployment: %w", err)
		}
		deployments = append(deployments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active deployments: %w", err)
	}
	return deployments, nil
}

// UpdateStatus moves one deployment to newStatus and, in the same
// statement, forces every other pending/running deployment in the
// workspace to stopped. This single UPDATE is what keeps the at-most-one-
// running invariant: promotion and demotion are never observable apart.
//
// The EXISTS guard restricts the statement to the case where the target
// row itself is still pending/running; otherwise zero rows are touched and
// ErrNoOpTransition is returned. The affected-row count is always checked,
// a no-op is never reported as success.
func (s *DeploymentService) UpdateStatus(ctx context.Context, workspaceID, id, newStatus string) error {
	// Pending is the insert-time status only; no transition re-enters it.
	if newStatus != model.StatusRunning && newStatus != model.StatusStopped {
		return fmt.Errorf("update deployment status: invalid target status %q", newStatus)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE deployments
		 SET status = CASE WHEN id = $2 THEN $3 ELSE 'stopped' END,
		     updated_at = now()
		 WHERE workspace_id = $1
		   AND status IN ('pending', 'running')
		   AND EXISTS (
		     SELECT 1 FROM deployments t
		     WHERE t.workspace_id = $1 AND t.id = $2 AND t.status IN ('pending', 'running')
		   )`,
		workspaceID, id, newStatus,
	)
	if err != nil {
		return fmt.Errorf("update status of deployment %s in workspace %s: %w", id, workspaceID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deployment %s in workspace %s: %w", id, workspaceID, ErrNoOpTransition)
	}
	return nil
}

// Deploy runs the caller-facing composition: claim the workspace's
// deployment lock, record the pending deployment, and hand off to the
// DeployWorkflow which provisions the serving container, promotes the
// row, and releases the lock on every path.
func (s *DeploymentService) Deploy(ctx context.Context, workspaceID string, version int, createdBy string) (*model.Deployment, error) {
	if err := s.locks.Acquire(ctx, workspaceID, version, createdBy); err != nil {
		return nil, err
	}

	d := &model.Deployment{
		ID:          platform.NewName("dpl_"),
		WorkspaceID: workspaceID,
		Version:     version,
		Status:      model.StatusPending,
		CreatedBy:   createdBy,
	}
	if err := s.Create(ctx, d); err != nil {
		// The lock was ours; give it back so the workspace is not
		// blocked by a failed insert.
		_ = s.locks.Release(ctx, workspaceID)
		return nil, err
	}

	_, err := s.tc.ExecuteWorkflow(ctx, temporalclient.StartWorkflowOptions{
		ID:        fmt.Sprintf("deploy-%s", workspaceID),
		TaskQueue: taskQueue,
	}, "DeployWorkflow", workspaceID, d.ID)
	if err != nil {
		_ = s.UpdateStatus(ctx, workspaceID, d.ID, model.StatusStopped)
		_ = s.locks.Release(ctx, workspaceID)
		return nil, fmt.Errorf("start DeployWorkflow: %w", err)
	}

	return d, nil
}

// Stop asks the worker to tear down a deployment's serving container and
// demote the row to stopped.
func (s *DeploymentService) Stop(ctx context.Context, workspaceID, id string) error {
	// Fail fast when the deployment does not exist.
	if _, err := s.GetByID(ctx, workspaceID, id); err != nil {
		return err
	}

	_, err := s.tc.ExecuteWorkflow(ctx, temporalclient.StartWorkflowOptions{
		ID:        fmt.Sprintf("stop-%s-%s", workspaceID, id),
		TaskQueue: taskQueue,
	}, "StopDeploymentWorkflow", workspaceID, id)
	if err != nil {
		return fmt.Errorf("start StopDeploymentWorkflow: %w", err)
	}
	return nil
}
