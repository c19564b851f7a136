package model

import "time"

// DeploymentLock marks a deployment operation in flight for a workspace.
// The workspace_id primary key is what makes concurrent acquires safe:
// at most one row can exist per workspace. ExpiresAt lets a later acquire
// take over a lock whose holder crashed without releasing.
type DeploymentLock struct {
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	Version     int       `json:"version" db:"version"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	ExpiresAt   time.Time `json:"expires_at" db:"expires_at"`
}
