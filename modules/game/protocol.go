package game

import (
	"encoding/json"
	"fmt"

	domain "github.com/example/drawing-game-demo/domain/game"
)

// Inbound and outbound method names.
const (
	MethodJoin       = "join"
	MethodDrawing    = "drawing"
	MethodAnswer     = "answer"
	MethodTicker     = "ticker"
	MethodTimeout    = "timeout"
	MethodDisconnect = "disconnect"
)

// Drawing sub-types.
const (
	DrawStart  = "start"
	DrawUpdate = "update"
	DrawEnd    = "end"
	DrawUndo   = "undo"
	DrawRedo   = "redo"
)

// CorrectAnswerText replaces a correct guess in answer frames so the word is not leaked.
const CorrectAnswerText = "Hit ! Answer is Correct"

// Command is a decoded inbound frame.
type Command interface {
	command()
}

// JoinCommand asks for a fresh room broadcast.
type JoinCommand struct{}

// DrawStartCommand starts a stroke.
type DrawStartCommand struct {
	Offset domain.Offset
}

// DrawUpdateCommand extends the in-progress stroke.
type DrawUpdateCommand struct {
	Offset domain.Offset
}

// DrawEndCommand ends the in-progress stroke.
type DrawEndCommand struct{}

// DrawUndoCommand removes the last stroke.
type DrawUndoCommand struct{}

// DrawRedoCommand restores the next undone stroke.
type DrawRedoCommand struct{}

// AnswerCommand is a guess.
type AnswerCommand struct {
	Answer string
}

// TickerCommand reports the remaining round time. A nil duration clears it.
type TickerCommand struct {
	Duration *int
}

// TimeoutCommand forces the end of the round.
type TimeoutCommand struct{}

// DisconnectCommand leaves the room.
type DisconnectCommand struct{}

func (JoinCommand) command()       {}
func (DrawStartCommand) command()  {}
func (DrawUpdateCommand) command() {}
func (DrawEndCommand) command()    {}
func (DrawUndoCommand) command()   {}
func (DrawRedoCommand) command()   {}
func (AnswerCommand) command()     {}
func (TickerCommand) command()     {}
func (TimeoutCommand) command()    {}
func (DisconnectCommand) command() {}

// inboundFrame is the wire shape of every client frame.
type inboundFrame struct {
	Method   string         `json:"method"`
	Type     string         `json:"type"`
	Answer   *string        `json:"answer"`
	Offset   *domain.Offset `json:"offset"`
	Duration *int           `json:"duration"`
}

// Decode parses a client frame. Undecodable JSON wraps ErrProtocol; unknown
// methods wrap ErrUnknownCommand and missing fields wrap ErrMalformedCommand.
func Decode(raw []byte) (Command, error) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	switch frame.Method {
	case MethodJoin:
		return JoinCommand{}, nil
	case MethodDrawing:
		return decodeDrawing(frame)
	case MethodAnswer:
		if frame.Answer == nil {
			return nil, fmt.Errorf("%w: answer without answer field", ErrMalformedCommand)
		}
		return AnswerCommand{Answer: *frame.Answer}, nil
	case MethodTicker:
		return TickerCommand{Duration: frame.Duration}, nil
	case MethodTimeout:
		return TimeoutCommand{}, nil
	case MethodDisconnect:
		return DisconnectCommand{}, nil
	default:
		return nil, fmt.Errorf("%w: method %q", ErrUnknownCommand, frame.Method)
	}
}

func decodeDrawing(frame inboundFrame) (Command, error) {
	switch frame.Type {
	case DrawStart, DrawUpdate:
		if frame.Offset == nil {
			return nil, fmt.Errorf("%w: drawing:%s without offset", ErrMalformedCommand, frame.Type)
		}
		if frame.Type == DrawStart {
			return DrawStartCommand{Offset: *frame.Offset}, nil
		}
		return DrawUpdateCommand{Offset: *frame.Offset}, nil
	case DrawEnd:
		return DrawEndCommand{}, nil
	case DrawUndo:
		return DrawUndoCommand{}, nil
	case DrawRedo:
		return DrawRedoCommand{}, nil
	default:
		return nil, fmt.Errorf("%w: drawing type %q", ErrUnknownCommand, frame.Type)
	}
}

// StateFrame carries the full room state after a mutation.
type StateFrame struct {
	Method string      `json:"method"`
	Room   domain.Room `json:"game_room"`
}

// AnswerFrame reports a guess to the room.
type AnswerFrame struct {
	Method    string      `json:"method"`
	Username  string      `json:"username"`
	IsCorrect bool        `json:"isCorrect"`
	Answer    string      `json:"answer"`
	Room      domain.Room `json:"game_room"`
}

// ErrorFrame is sent to a single connection.
type ErrorFrame struct {
	ErrorMessage string `json:"error_message"`
}

// EncodeError builds the error frame for err.
func EncodeError(err error) []byte {
	data, mErr := json.Marshal(ErrorFrame{ErrorMessage: UserMessage(err)})
	if mErr != nil {
		return []byte(`{"error_message":"` + MessageSomethingWrong + `"}`)
	}
	return data
}
