package utils

import "github.com/google/uuid"

// NewID returns a fresh server-assigned identifier. Used for users,
// tags, entries and sessions alike.
func NewID() string {
	return uuid.New().String()
}
