package request

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Workspace names end up in logs and dashboards next to registry image
// paths, so they are restricted to lowercase slugs.
var workspaceNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,62}$`)

func init() {
	validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return workspaceNameRegex.MatchString(fl.Field().String())
	})
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

// Generated IDs are lowercase alphanumeric with a typed prefix, for
// example "ws_" or "dpl_". Rejecting anything else here keeps junk path
// segments out of the SQL layer.
var idRegex = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

func RequireID(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("missing required ID")
	}
	if !idRegex.MatchString(s) {
		return "", fmt.Errorf("malformed ID %q", s)
	}
	return s, nil
}
