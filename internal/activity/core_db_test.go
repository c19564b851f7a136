package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nantutech/ntcore/internal/core"
)

// ---------- Mock DB ----------

type mockDB struct {
	mock.Mock
}

func (m *mockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	return m.scanFunc(dest...)
}

func newCoreDB(db *mockDB) *CoreDB {
	return NewCoreDB(core.NewServices(db, nil, 10*time.Minute))
}

func TestCoreDB_GetDeploymentContext(t *testing.T) {
	db := &mockDB{}
	now := time.Now()
	db.On("QueryRow", mock.Anything, mock.Anything, []any{"ws-1", "dpl-1"}).Return(&mockRow{
		scanFunc: func(dest ...any) error {
			*dest[0].(*string) = "dpl-1"
			*dest[1].(*string) = "ws-1"
			*dest[2].(*int) = 3
			*dest[3].(*string) = "pending"
			*dest[4].(*string) = "alice"
			*dest[5].(*time.Time) = now
			*dest[6].(*time.Time) = now
			return nil
		},
	})
	db.On("QueryRow", mock.Anything, mock.Anything, []any{"ws-1"}).Return(&mockRow{
		scanFunc: func(dest ...any) error {
			*dest[0].(*string) = "ws-1"
			*dest[1].(*string) = "fraud-detection"
			*dest[2].(*string) = "API"
			*dest[3].(*string) = "alice"
			*dest[4].(*time.Time) = now
			*dest[5].(*time.Time) = now
			return nil
		},
	})

	dc, err := newCoreDB(db).GetDeploymentContext(context.Background(), DeploymentRefParams{
		WorkspaceID:  "ws-1",
		DeploymentID: "dpl-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "dpl-1", dc.Deployment.ID)
	assert.Equal(t, 3, dc.Deployment.Version)
	assert.Equal(t, "fraud-detection", dc.Workspace.Name)
}

func TestCoreDB_GetDeploymentContext_NotFound(t *testing.T) {
	db := &mockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, []any{"ws-1", "dpl-1"}).Return(&mockRow{
		scanFunc: func(dest ...any) error { return pgx.ErrNoRows },
	})

	_, err := newCoreDB(db).GetDeploymentContext(context.Background(), DeploymentRefParams{
		WorkspaceID:  "ws-1",
		DeploymentID: "dpl-1",
	})

	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCoreDB_PromoteDeployment(t *testing.T) {
	db := &mockDB{}
	db.On("Exec", mock.Anything, mock.Anything, []any{"ws-1", "dpl-1", "running"}).
		Return(pgconn.NewCommandTag("UPDATE 2"), nil)

	err := newCoreDB(db).PromoteDeployment(context.Background(), DeploymentRefParams{
		WorkspaceID:  "ws-1",
		DeploymentID: "dpl-1",
	})

	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestCoreDB_PromoteDeployment_NoOpIsError(t *testing.T) {
	db := &mockDB{}
	db.On("Exec", mock.Anything, mock.Anything, []any{"ws-1", "dpl-1", "running"}).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := newCoreDB(db).PromoteDeployment(context.Background(), DeploymentRefParams{
		WorkspaceID:  "ws-1",
		DeploymentID: "dpl-1",
	})

	assert.ErrorIs(t, err, core.ErrNoOpTransition)
}

func TestCoreDB_DemoteDeployment_NoOpIsTolerated(t *testing.T) {
	db := &mockDB{}
	db.On("Exec", mock.Anything, mock.Anything, []any{"ws-1", "dpl-1", "stopped"}).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := newCoreDB(db).DemoteDeployment(context.Background(), DeploymentRefParams{
		WorkspaceID:  "ws-1",
		DeploymentID: "dpl-1",
	})

	assert.NoError(t, err)
}

func TestCoreDB_DemoteDeployment_StorageError(t *testing.T) {
	db := &mockDB{}
	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("connection refused"))

	err := newCoreDB(db).DemoteDeployment(context.Background(), DeploymentRefParams{
		WorkspaceID:  "ws-1",
		DeploymentID: "dpl-1",
	})

	assert.ErrorContains(t, err, "demote deployment")
}

func TestCoreDB_ReleaseDeploymentLock(t *testing.T) {
	db := &mockDB{}
	db.On("Exec", mock.Anything, mock.Anything, []any{"ws-1"}).
		Return(pgconn.NewCommandTag("DELETE 1"), nil)

	err := newCoreDB(db).ReleaseDeploymentLock(context.Background(), "ws-1")

	require.NoError(t, err)
	db.AssertExpectations(t)
}
