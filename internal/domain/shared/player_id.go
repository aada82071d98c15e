package shared

import (
	"fmt"

	"github.com/google/uuid"
)

// PlayerID is a value object wrapping the host's unique player identifier (a UUID)
type PlayerID struct {
	value uuid.UUID
}

// NewPlayerID parses a PlayerID from its canonical string form
func NewPlayerID(id string) (PlayerID, error) {
	if id == "" {
		return PlayerID{}, fmt.Errorf("player_id cannot be empty")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return PlayerID{}, fmt.Errorf("invalid player_id %q: %w", id, err)
	}
	if parsed == uuid.Nil {
		return PlayerID{}, fmt.Errorf("player_id cannot be the nil UUID")
	}
	return PlayerID{value: parsed}, nil
}

// MustNewPlayerID parses a PlayerID, panicking if invalid
// Use this only when you're certain the ID is valid (e.g., from database)
func MustNewPlayerID(id string) PlayerID {
	playerID, err := NewPlayerID(id)
	if err != nil {
		panic(err)
	}
	return playerID
}

// GeneratePlayerID returns a random PlayerID (tests and admin tooling)
func GeneratePlayerID() PlayerID {
	return PlayerID{value: uuid.New()}
}

// String returns the canonical UUID string
func (p PlayerID) String() string {
	return p.value.String()
}

// Equals checks if two PlayerIDs are equal
func (p PlayerID) Equals(other PlayerID) bool {
	return p.value == other.value
}

// IsZero checks if the PlayerID is the zero value (uninitialized)
func (p PlayerID) IsZero() bool {
	return p.value == uuid.Nil
}
