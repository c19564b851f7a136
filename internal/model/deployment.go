package model

import "time"

// Deployment is one versioned rollout of a workspace's model. The pair
// (ID, WorkspaceID) is unique, and at most one deployment per workspace
// is ever in status running.
type Deployment struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	Version     int       `json:"version" db:"version"`
	Status      string    `json:"status" db:"status"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
