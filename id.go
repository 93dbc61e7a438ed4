package tastebase

import (
	"github.com/google/uuid"
)

// NewID generates a UUIDv7 (time-ordered) identifier for restaurants and
// reviews. Sortable by creation time, no coordination needed.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fall back to UUIDv4 if NewV7 fails (extremely rare)
		id = uuid.New()
	}
	return id.String()
}
