package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nantutech/ntcore/internal/core"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"id": "ws-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"ws-1"}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "bad input")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"bad input"}`, rec.Body.String())
}

func TestWriteServiceError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{core.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("get deployment dpl-1: %w", core.ErrNotFound), http.StatusNotFound},
		{core.ErrLockConflict, http.StatusConflict},
		{core.ErrDuplicateDeployment, http.StatusConflict},
		{core.ErrNoOpTransition, http.StatusConflict},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteServiceError(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)
	}
}
