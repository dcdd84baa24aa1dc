package note

import "github.com/oklog/ulid/v2"

// NewBlockID generates a new block identifier.
// Format: ULID (e.g., 01JB6X8Y2K9FQR4T3VWHGP5M2C)
// ulid.Make draws from a process-wide monotonic source that is safe for concurrent use.
func NewBlockID() string {
	return ulid.Make().String()
}
