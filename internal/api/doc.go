// Package api provides the ntcore REST API.
package api
