package core

import (
	"context"
	"fmt"
	"time"

	"github.com/nantutech/ntcore/internal/model"
)

// DeploymentLockService manages the per-workspace deployment locks.
//
// All mutual exclusion is delegated to the deployment_locks primary key:
// there is no in-process synchronization, so the service is safe to use
// from any number of goroutines or control-plane processes at once.
type DeploymentLockService struct {
	db  DB
	ttl time.Duration
}

func NewDeploymentLockService(db DB, ttl time.Duration) *DeploymentLockService {
	return &DeploymentLockService{db: db, ttl: ttl}
}

// Acquire claims the deployment lock for a workspace. Exactly one of any
// number of concurrent callers wins; the rest get ErrLockConflict. A lock
// whose expires_at has passed is taken over atomically in the same
// statement, so a crashed holder cannot block the workspace forever.
func (s *DeploymentLockService) Acquire(ctx context.Context, workspaceID string, version int, createdBy string) error {
	tag, err := s.db.Exec(ctx,
		`INSERT INTO deployment_locks (workspace_id, version, created_by, created_at, expires_at)
		 VALUES ($1, $2, $3, now(), now() + make_interval(secs => $4))
		 ON CONFLICT (workspace_id) DO UPDATE
		 SET version = EXCLUDED.version,
		     created_by = EXCLUDED.created_by,
		     created_at = EXCLUDED.created_at,
		     expires_at = EXCLUDED.expires_at
		 WHERE deployment_locks.expires_at <= now()`,
		workspaceID, version, createdBy, s.ttl.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("acquire deployment lock for workspace %s: %w", workspaceID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workspace %s: %w", workspaceID, ErrLockConflict)
	}
	return nil
}

// Release deletes the workspace's lock. Releasing an absent lock is not
// an error.
func (s *DeploymentLockService) Release(ctx context.Context, workspaceID string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM deployment_locks WHERE workspace_id = $1`, workspaceID,
	)
	if err != nil {
		return fmt.Errorf("release deployment lock for workspace %s: %w", workspaceID, err)
	}
	return nil
}

// GetByWorkspace returns the current lock for a workspace, or ErrNotFound.
func (s *DeploymentLockService) GetByWorkspace(ctx context.Context, workspaceID string) (*model.DeploymentLock, error) {
	var l model.DeploymentLock
	err := s.db.QueryRow(ctx,
		`SELECT workspace_id, version, created_by, created_at, expires_at
		 FROM deployment_locks WHERE workspace_id = $1`, workspaceID,
	).Scan(&l.WorkspaceID, &l.Version, &l.CreatedBy, &l.CreatedAt, &l.ExpiresAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("deployment lock for workspace %s: %w", workspaceID, ErrNotFound)
		}
		return nil, fmt.Errorf("get deployment lock for workspace %s: %w", workspaceID, err)
	}
	return &l, nil
}
