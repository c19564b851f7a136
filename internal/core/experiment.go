package core

import (
	"context"
	"fmt"

	"github.com/nantutech/ntcore/internal/model"
)

// ExperimentService tracks which trained model version each workspace
// has registered for serving. Clients register a version after training
// and read the registration back when choosing what to deploy.
type ExperimentService struct {
	db DB
}

func NewExperimentService(db DB) *ExperimentService {
	return &ExperimentService{db: db}
}

// Register records exp as the workspace's serving candidate. A second
// registration for the same workspace overwrites the first.
func (s *ExperimentService) Register(ctx context.Context, exp *model.RegisteredExperiment) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO registered_experiments (workspace_id, version, runtime, framework, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, now(), now())
		 ON CONFLICT (workspace_id) DO UPDATE
		 SET version = EXCLUDED.version,
		     runtime = EXCLUDED.runtime,
		     framework = EXCLUDED.framework,
		     updated_at = now()`,
		exp.WorkspaceID, exp.Version, exp.Runtime, exp.Framework,
	)
	if err != nil {
		return fmt.Errorf("register experiment for workspace %s: %w", exp.WorkspaceID, err)
	}
	return nil
}

func (s *ExperimentService) GetRegistered(ctx context.Context, workspaceID string) (*model.RegisteredExperiment, error) {
	var exp model.RegisteredExperiment
	err := s.db.QueryRow(ctx,
		`SELECT workspace_id, version, runtime, framework, created_at, updated_at
		 FROM registered_experiments WHERE workspace_id = $1`, workspaceID,
	).Scan(&exp.WorkspaceID, &exp.Version, &exp.Runtime, &exp.Framework, &exp.CreatedAt, &exp.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("registered experiment for workspace %s: %w", workspaceID, ErrNotFound)
		}
		return nil, fmt.Errorf("get registered experiment for workspace %s: %w", workspaceID, err)
	}
	return &exp, nil
}

func (s *ExperimentService) Unregister(ctx context.Context, workspaceID string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM registered_experiments WHERE workspace_id = $1`, workspaceID,
	)
	if err != nil {
		return fmt.Errorf("unregister experiment for workspace %s: %w", workspaceID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("registered experiment for workspace %s: %w", workspaceID, ErrNotFound)
	}
	return nil
}
