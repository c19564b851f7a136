package request

// RegisterExperiment is the payload for POST /workspaces/{workspaceID}/registry.
// Runtime and framework are informational; only the version drives serving.
type RegisterExperiment struct {
	Version   int    `json:"version" validate:"required,min=1"`
	Runtime   string `json:"runtime"`
	Framework string `json:"framework"`
}
