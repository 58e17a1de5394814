package history

import (
	domain "github.com/example/drawing-game-demo/domain/game"
)

// ServiceListRounds is the name of the round history service.
const ServiceListRounds = "list-rounds"

// Limits applied to history queries.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListRoundsRequest is the request for a room's round history.
type ListRoundsRequest struct {
	RoomID string `json:"room_id"`
	Limit  int    `json:"limit"`
}

// ListRoundsResponse is the response for a room's round history.
type ListRoundsResponse struct {
	Rounds []domain.Round `json:"rounds"`
	Total  int64          `json:"total"`
}

// normalizeLimit clamps a requested limit into [1, MaxLimit].
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
