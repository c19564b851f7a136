package core

import (
	"context"
	"fmt"

	"github.com/nantutech/ntcore/internal/model"
)

// WorkspaceService manages workspace records. Deployments and deployment
// locks reference workspaces with ON DELETE CASCADE, so deleting a
// workspace is all the cleanup the deployment subsystem ever needs.
type WorkspaceService struct {
	db DB
}

func NewWorkspaceService(db DB) *WorkspaceService {
	return &WorkspaceService{db: db}
}

func (s *WorkspaceService) Create(ctx context.Context, ws *model.Workspace) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO workspaces (id, name, type, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, now(), now())`,
		ws.ID, ws.Name, ws.Type, ws.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert workspace: %w", err)
	}
	return nil
}

func (s *WorkspaceService) GetByID(ctx context.Context, id string) (*model.Workspace, error) {
	var ws model.Workspace
	err := s.db.QueryRow(ctx,
		`SELECT id, name, type, created_by, created_at, updated_at
		 FROM workspaces WHERE id = $1`, id,
	).Scan(&ws.ID, &ws.Name, &ws.Type, &ws.CreatedBy, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("workspace %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get workspace %s: %w", id, err)
	}
	return &ws, nil
}

func (s *WorkspaceService) List(ctx context.Context) ([]model.Workspace, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, type, created_by, created_at, updated_at
		 FROM workspaces ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []model.Workspace
	for rows.Next() {
		var ws model.Workspace
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.Type, &ws.CreatedBy, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		workspaces = append(workspaces, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspaces: %w", err)
	}
	return workspaces, nil
}

// Delete removes a workspace. The deployments and deployment_locks
// foreign keys cascade, so the workspace's deployment history and any
// held lock disappear with it.
func (s *WorkspaceService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete workspace %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workspace %s: %w", id, ErrNotFound)
	}
	return nil
}
