package platform

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// Short IDs appear in container names and image tags, so the alphabet is
// restricted to what Docker references accept.
const shortIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const shortIDLength = 10

// NewID returns a UUID for rows that never leave the database, such as
// API keys.
func NewID() string {
	return uuid.New().String()
}

// NewName returns a prefixed short identifier. Workspaces use the "ws_"
// prefix and deployments "dpl_".
func NewName(prefix string) string {
	b := make([]byte, shortIDLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	for i := range b {
		b[i] = shortIDAlphabet[b[i]%byte(len(shortIDAlphabet))]
	}
	return prefix + string(b)
}
