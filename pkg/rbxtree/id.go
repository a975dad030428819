package rbxtree

import "github.com/google/uuid"

// ID is a stable 128-bit instance identifier.
// IDs are generated once when an instance is inserted and never reused or
// recomputed, so they survive reconciliation passes that leave the
// instance itself unchanged.
type ID = uuid.UUID

// NewID generates a fresh, random instance ID.
func NewID() ID {
	return uuid.New()
}
