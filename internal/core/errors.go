package core

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for the deployment lifecycle. Callers match them with
// errors.Is; the wrapped message carries the workspace/deployment detail.
var (
	// ErrNotFound is returned by reads that match no row.
	ErrNotFound = errors.New("not found")

	// ErrLockConflict is returned when a live deployment lock already
	// exists for the workspace.
	ErrLockConflict = errors.New("deployment lock already held")

	// ErrDuplicateDeployment is returned when a deployment id collides
	// within its workspace.
	ErrDuplicateDeployment = errors.New("deployment already exists")

	// ErrNoOpTransition is returned when a status update matched zero
	// rows because the target deployment is absent or already stopped.
	// Treating this as success would mask lost transitions, so it is
	// always surfaced.
	ErrNoOpTransition = errors.New("deployment not in a transitionable status")
)

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique_violation,
// i.e. an insert lost the race against an existing row.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// isNoRows reports whether err means a single-row query matched nothing.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
