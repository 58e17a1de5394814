package api

import (
	domain "github.com/example/drawing-game-demo/domain/game"
)

// Response is the envelope of every HTTP response. Status mirrors the HTTP status code.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// RoundHistoryResponse is the data of a round history response.
type RoundHistoryResponse struct {
	RoomID string         `json:"room_id"`
	Rounds []domain.Round `json:"rounds"`
	Total  int64          `json:"total"`
}

// HealthResponse is the data of a health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
