package request

// CreateDeployment is the payload for POST /workspaces/{workspaceID}/deployments.
// Version is the model version to roll out; versions start at 1.
type CreateDeployment struct {
	Version   int    `json:"version" validate:"required,min=1"`
	CreatedBy string `json:"created_by" validate:"required"`
}
