package request

// CreateAPIKey is the payload for POST /api-keys.
type CreateAPIKey struct {
	Name string `json:"name" validate:"required,min=1,max=64"`
}
