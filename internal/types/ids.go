package types

import (
	"time"

	"github.com/google/uuid"
)

// NewLogID generates a UUIDv7 execution log identifier.
// Time-ordered IDs ensure sequential inserts cluster in B-tree pages.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewLogID() LogID {
	return LogID(uuid.Must(uuid.NewV7()).String())
}

// NewRunID generates a UUIDv7 run identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRunID() RunID {
	return RunID(uuid.Must(uuid.NewV7()).String())
}

// ParseLogID validates and converts a string to LogID.
// Rejects malformed UUIDs to prevent invalid IDs from entering queries.
func ParseLogID(s string) (LogID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return LogID(s), nil
}

// RunIDTime extracts the timestamp embedded in a UUIDv7 run ID.
// Enables run-age queries without a database lookup.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func RunIDTime(id RunID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
