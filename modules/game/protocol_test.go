package game

import (
	"encoding/json"
	"errors"
	"testing"

	domain "github.com/example/drawing-game-demo/domain/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	five := 5

	tests := []struct {
		name    string
		raw     string
		want    Command
		wantErr error
	}{
		{name: "join", raw: `{"method":"join"}`, want: JoinCommand{}},
		{
			name: "drawing start",
			raw:  `{"method":"drawing","type":"start","offset":{"dx":1.5,"dy":2}}`,
			want: DrawStartCommand{Offset: domain.Offset{DX: 1.5, DY: 2}},
		},
		{
			name: "drawing update",
			raw:  `{"method":"drawing","type":"update","offset":{"dx":3,"dy":4}}`,
			want: DrawUpdateCommand{Offset: domain.Offset{DX: 3, DY: 4}},
		},
		{name: "drawing end", raw: `{"method":"drawing","type":"end"}`, want: DrawEndCommand{}},
		{name: "drawing undo", raw: `{"method":"drawing","type":"undo"}`, want: DrawUndoCommand{}},
		{name: "drawing redo", raw: `{"method":"drawing","type":"redo"}`, want: DrawRedoCommand{}},
		{name: "answer", raw: `{"method":"answer","answer":"Lion"}`, want: AnswerCommand{Answer: "Lion"}},
		{name: "ticker", raw: `{"method":"ticker","duration":5}`, want: TickerCommand{Duration: &five}},
		{name: "ticker without duration", raw: `{"method":"ticker"}`, want: TickerCommand{}},
		{name: "timeout", raw: `{"method":"timeout"}`, want: TimeoutCommand{}},
		{name: "disconnect", raw: `{"method":"disconnect"}`, want: DisconnectCommand{}},
		{name: "not json", raw: `{"method":`, wantErr: ErrProtocol},
		{name: "wrong field type", raw: `{"method":42}`, wantErr: ErrProtocol},
		{name: "unknown method", raw: `{"method":"dance"}`, wantErr: ErrUnknownCommand},
		{name: "missing method", raw: `{}`, wantErr: ErrUnknownCommand},
		{name: "unknown drawing type", raw: `{"method":"drawing","type":"erase"}`, wantErr: ErrUnknownCommand},
		{name: "start without offset", raw: `{"method":"drawing","type":"start"}`, wantErr: ErrMalformedCommand},
		{name: "answer without answer", raw: `{"method":"answer"}`, wantErr: ErrMalformedCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Decode([]byte(tt.raw))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, cmd)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestStateFrame_WireNames(t *testing.T) {
	duration := 30
	frame := StateFrame{
		Method: MethodJoin,
		Room: domain.Room{
			ID:              "abc12345",
			Players:         []domain.Player{{Username: "alice", Score: 2, IsAnswered: true}},
			IsPlaying:       false,
			CurrentPlayer:   &domain.Player{Username: "alice", Score: 2, IsAnswered: true},
			CurrentDuration: &duration,
			CurrentWord:     "Lion",
			ActiveStrokes:   []domain.Stroke{{Offsets: []domain.Offset{{DX: 1, DY: 2}}}},
		},
	}

	data, err := json.Marshal(frame)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "join", decoded["method"])

	room, ok := decoded["game_room"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"id", "connectedClients", "isPlaying", "currentPlayer", "currentDuration", "currentAnswer", "currentDrawingPoint"} {
		assert.Contains(t, room, key)
	}
	assert.Len(t, room, 7)

	player := room["connectedClients"].([]any)[0].(map[string]any)
	assert.Equal(t, "alice", player["username"])
	assert.Equal(t, true, player["isAnswered"])

	stroke := room["currentDrawingPoint"].([]any)[0].(map[string]any)
	point := stroke["offsets"].([]any)[0].(map[string]any)
	assert.Equal(t, 1.0, point["dx"])
}

func TestEncodeError(t *testing.T) {
	assert.JSONEq(t, `{"error_message":"Room not Available for that ID"}`, string(EncodeError(ErrRoomNotFound)))
	assert.JSONEq(t, `{"error_message":"Invalid frame"}`, string(EncodeError(ErrProtocol)))

	_, err := Decode([]byte(`{"method":`))
	require.ErrorIs(t, err, ErrProtocol)
	var frame ErrorFrame
	require.NoError(t, json.Unmarshal(EncodeError(err), &frame))
	assert.Equal(t, "Invalid frame: unexpected end of JSON input", frame.ErrorMessage)
}
