package model

// Deployment status constants.
//
// A deployment starts as pending, becomes running when the serving
// container is up, and ends as stopped. Stopped is terminal.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusStopped = "stopped"
)
