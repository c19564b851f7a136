package model

import "time"

// RegisteredExperiment marks which trained model version a workspace
// serves. Each workspace has at most one registration; registering a
// new version replaces the old one.
type RegisteredExperiment struct {
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	Version     int       `json:"version" db:"version"`
	Runtime     string    `json:"runtime" db:"runtime"`
	Framework   string    `json:"framework" db:"framework"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
