package game

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxUsernameLength is the longest accepted username in bytes.
const MaxUsernameLength = 50

// Kind classifies an error for callers that map it to a response.
type Kind string

// Error kinds.
const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindProtocol   Kind = "protocol"
	KindInternal   Kind = "internal"
)

// Validation errors
var (
	ErrUsernameEmpty   = errors.New("username cannot be empty")
	ErrUsernameTooLong = errors.New("username exceeds maximum length")
	ErrUsernameInvalid = errors.New("username contains invalid characters")
)

// Lookup and protocol errors
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrUsernameTaken    = errors.New("username already taken in room")
	ErrProtocol         = errors.New("undecodable frame")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrMalformedCommand = errors.New("malformed command")
	ErrRateLimited      = errors.New("too many answers")
)

// User-facing messages sent to players.
const (
	MessageRoomCreated    = "Game Created"
	MessageRoomList       = "Game Rooms"
	MessageCanJoin        = "You Can Join the Game"
	MessageUsernameEmpty  = "Username cannot be empty"
	MessageRoomNotFound   = "Room not Available for that ID"
	MessageUsernameTaken  = "Another username is in the Room, please change to a unique Username"
	MessageSomethingWrong = "Something Wrong!"
	MessageSlowDown       = "Too many answers, slow down"
	MessageInvalidFrame   = "Invalid frame"
)

// UserMessage returns the text shown to a player for err.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrUsernameEmpty):
		return MessageUsernameEmpty
	case errors.Is(err, ErrUsernameTooLong), errors.Is(err, ErrUsernameInvalid):
		return err.Error()
	case errors.Is(err, ErrRoomNotFound):
		return MessageRoomNotFound
	case errors.Is(err, ErrUsernameTaken):
		return MessageUsernameTaken
	case errors.Is(err, ErrRateLimited):
		return MessageSlowDown
	case errors.Is(err, ErrProtocol):
		return protocolMessage(err)
	default:
		return MessageSomethingWrong
	}
}

// protocolMessage names the decode failure carried by a wrapped ErrProtocol.
func protocolMessage(err error) string {
	reason := strings.TrimPrefix(err.Error(), ErrProtocol.Error())
	reason = strings.TrimPrefix(reason, ": ")
	if reason == "" {
		return MessageInvalidFrame
	}
	return MessageInvalidFrame + ": " + reason
}

// kindError carries a kind and message rebuilt from a service response.
type kindError struct {
	kind    Kind
	message string
}

func (e *kindError) Error() string {
	return e.message
}

// Is lets a rebuilt error match the sentinel it was created from.
func (e *kindError) Is(target error) bool {
	return target != nil && target.Error() == e.message
}

// ErrorFromKind rebuilds an error that crossed a service boundary as a code and a message.
func ErrorFromKind(kind Kind, message string) error {
	return &kindError{kind: kind, message: message}
}

// KindOf maps err to its kind. Unclassified errors are internal.
func KindOf(err error) Kind {
	var ke *kindError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ke):
		return ke.kind
	case errors.Is(err, ErrUsernameEmpty),
		errors.Is(err, ErrUsernameTooLong),
		errors.Is(err, ErrUsernameInvalid):
		return KindValidation
	case errors.Is(err, ErrRoomNotFound):
		return KindNotFound
	case errors.Is(err, ErrUsernameTaken):
		return KindConflict
	case errors.Is(err, ErrProtocol),
		errors.Is(err, ErrUnknownCommand),
		errors.Is(err, ErrMalformedCommand),
		errors.Is(err, ErrRateLimited):
		return KindProtocol
	default:
		return KindInternal
	}
}

// ValidateUsername validates a username.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	if !utf8.ValidString(username) {
		return ErrUsernameInvalid
	}
	return nil
}
