package request

// CreateWorkspace is the payload for POST /workspaces.
type CreateWorkspace struct {
	Name      string `json:"name" validate:"required,slug"`
	Type      string `json:"type" validate:"required,oneof=API Batch"`
	CreatedBy string `json:"created_by" validate:"required"`
}
