package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nantutech/ntcore/internal/core"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteServiceError maps core service errors onto HTTP statuses. The
// lifecycle conflicts are all 409: another deploy holds the lock, the
// version was already deployed, or the target is no longer in flight.
func WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrLockConflict),
		errors.Is(err, core.ErrDuplicateDeployment),
		errors.Is(err, core.ErrNoOpTransition):
		WriteError(w, http.StatusConflict, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
