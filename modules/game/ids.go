package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// roomIDLength is the number of UUID characters kept for a room id.
const roomIDLength = 8

// NewRoomID derives a short room id from rng.
func NewRoomID(rng *rand.Rand) (string, error) {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return "", fmt.Errorf("failed to generate room id: %w", err)
	}
	return id.String()[:roomIDLength], nil
}
