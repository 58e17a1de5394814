package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// RoomCreatedEvent is emitted when a new room is created.
type RoomCreatedEvent struct {
	RoomID    string    `json:"room_id"`
	Timestamp time.Time `json:"timestamp"`
}

// PlayerJoinedEvent is emitted when a player binds a connection to a room.
type PlayerJoinedEvent struct {
	RoomID    string    `json:"room_id"`
	Username  string    `json:"username"`
	Players   int       `json:"players"`
	Timestamp time.Time `json:"timestamp"`
}

// PlayerLeftEvent is emitted when a player leaves a room.
type PlayerLeftEvent struct {
	RoomID    string    `json:"room_id"`
	Username  string    `json:"username"`
	Players   int       `json:"players"`
	Timestamp time.Time `json:"timestamp"`
}

// RoundCompletedEvent is emitted when a round ends because every guesser
// answered or the round timed out.
type RoundCompletedEvent struct {
	RoomID    string         `json:"room_id"`
	Round     int            `json:"round"`
	Drawer    string         `json:"drawer"`
	Word      string         `json:"word"`
	Reason    string         `json:"reason"`
	Scores    map[string]int `json:"scores"`
	Timestamp time.Time      `json:"timestamp"`
}

// RoomClosedEvent is emitted when the last player leaves and the room is removed.
type RoomClosedEvent struct {
	RoomID    string    `json:"room_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the game domain.
var (
	RoomCreatedV1 = helper.EventDefinition[RoomCreatedEvent](
		"game",
		"RoomCreated",
		"v1",
	)

	PlayerJoinedV1 = helper.EventDefinition[PlayerJoinedEvent](
		"game",
		"PlayerJoined",
		"v1",
	)

	PlayerLeftV1 = helper.EventDefinition[PlayerLeftEvent](
		"game",
		"PlayerLeft",
		"v1",
	)

	RoundCompletedV1 = helper.EventDefinition[RoundCompletedEvent](
		"game",
		"RoundCompleted",
		"v1",
	)

	RoomClosedV1 = helper.EventDefinition[RoomClosedEvent](
		"game",
		"RoomClosed",
		"v1",
	)
)
