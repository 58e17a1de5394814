package game

import "time"

// Offset is a single pen position on the canvas.
type Offset struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Stroke is one continuous pen-down to pen-up path.
type Stroke struct {
	Offsets []Offset `json:"offsets"`
}

// Player is a participant of a room.
type Player struct {
	Username   string `json:"username"`
	Score      int    `json:"score"`
	IsAnswered bool   `json:"isAnswered"`
}

// Room is the serialized state of a game room as sent to clients.
// Connections and the redo history are never part of it.
type Room struct {
	ID              string   `json:"id"`
	Players         []Player `json:"connectedClients"`
	IsPlaying       bool     `json:"isPlaying"`
	CurrentPlayer   *Player  `json:"currentPlayer"`
	CurrentDuration *int     `json:"currentDuration"`
	CurrentWord     string   `json:"currentAnswer"`
	ActiveStrokes   []Stroke `json:"currentDrawingPoint"`
}

// Round is a completed round as recorded in the history.
type Round struct {
	RoomID      string         `json:"room_id"`
	Number      int            `json:"round"`
	Drawer      string         `json:"drawer"`
	Word        string         `json:"word"`
	Reason      string         `json:"reason"`
	Scores      map[string]int `json:"scores"`
	CompletedAt time.Time      `json:"completed_at"`
}
