package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/nantutech/ntcore/internal/model"
)

func scanWorkspaceRowForRegistry(dest ...any) error {
	now := time.Now()
	*dest[0].(*string) = validID
	*dest[1].(*string) = "fraud-detection"
	*dest[2].(*string) = model.WorkspaceTypeAPI
	*dest[3].(*string) = "alice"
	*dest[4].(*time.Time) = now
	*dest[5].(*time.Time) = now
	return nil
}

func TestExperimentRegister_Success(t *testing.T) {
	db := &handlerMockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, []any{validID}).
		Return(&mockRow{scanFunc: scanWorkspaceRowForRegistry})
	db.On("Exec", mock.Anything, mock.Anything,
		[]any{validID, 3, "python-3.9", "sklearn"}).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	h := NewExperiment(newTestServices(db))
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/workspaces/"+validID+"/registry",
		map[string]any{"version": 3, "runtime": "python-3.9", "framework": "sklearn"})
	r = withChiURLParam(r, "workspaceID", validID)

	h.Register(rec, r)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":3`)
	db.AssertExpectations(t)
}

func TestExperimentRegister_ZeroVersion(t *testing.T) {
	db := &handlerMockDB{}
	h := NewExperiment(newTestServices(db))
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/workspaces/"+validID+"/registry",
		map[string]any{"version": 0})
	r = withChiURLParam(r, "workspaceID", validID)

	h.Register(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}

func TestExperimentRegister_WorkspaceNotFound(t *testing.T) {
	db := &handlerMockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, []any{validID}).
		Return(&mockRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }})

	h := NewExperiment(newTestServices(db))
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/workspaces/"+validID+"/registry",
		map[string]any{"version": 1})
	r = withChiURLParam(r, "workspaceID", validID)

	h.Register(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}

func TestExperimentGet_Success(t *testing.T) {
	db := &handlerMockDB{}
	now := time.Now()
	db.On("QueryRow", mock.Anything, mock.Anything, []any{validID}).Return(&mockRow{
		scanFunc: func(dest ...any) error {
			*dest[0].(*string) = validID
			*dest[1].(*int) = 3
			*dest[2].(*string) = "python-3.9"
			*dest[3].(*string) = "sklearn"
			*dest[4].(*time.Time) = now
			*dest[5].(*time.Time) = now
			return nil
		},
	})

	h := NewExperiment(newTestServices(db))
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/workspaces/"+validID+"/registry", nil)
	r = withChiURLParam(r, "workspaceID", validID)

	h.Get(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"framework":"sklearn"`)
}

func TestExperimentGet_NotRegistered(t *testing.T) {
	db := &handlerMockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, []any{validID}).
		Return(&mockRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }})

	h := NewExperiment(newTestServices(db))
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/workspaces/"+validID+"/registry", nil)
	r = withChiURLParam(r, "workspaceID", validID)

	h.Get(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExperimentUnregister_Success(t *testing.T) {
	db := &handlerMockDB{}
	db.On("Exec", mock.Anything, mock.Anything, []any{validID}).
		Return(pgconn.NewCommandTag("DELETE 1"), nil)

	h := NewExperiment(newTestServices(db))
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodDelete, "/workspaces/"+validID+"/registry", nil)
	r = withChiURLParam(r, "workspaceID", validID)

	h.Unregister(rec, r)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestExperimentUnregister_NotRegistered(t *testing.T) {
	db := &handlerMockDB{}
	db.On("Exec", mock.Anything, mock.Anything, []any{validID}).
		Return(pgconn.NewCommandTag("DELETE 0"), nil)

	h := NewExperiment(newTestServices(db))
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodDelete, "/workspaces/"+validID+"/registry", nil)
	r = withChiURLParam(r, "workspaceID", validID)

	h.Unregister(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
