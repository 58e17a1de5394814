package game

import (
	domain "github.com/example/drawing-game-demo/domain/game"
)

// Service names registered by the game module.
const (
	ServiceCreateRoom   = "create-room"
	ServiceListRooms    = "list-rooms"
	ServiceGetRoom      = "get-room"
	ServiceValidateJoin = "validate-join"
)

// CreateRoomRequest is the request for creating a room.
type CreateRoomRequest struct{}

// ListRoomsRequest is the request for listing rooms.
type ListRoomsRequest struct{}

// GetRoomRequest is the request for fetching a room.
type GetRoomRequest struct {
	RoomID string `json:"room_id"`
}

// ValidateJoinRequest is the request for checking whether a username may join a room.
type ValidateJoinRequest struct {
	RoomID   string `json:"room_id"`
	Username string `json:"username"`
}

// RoomResponse carries a room or the error that prevented returning one.
type RoomResponse struct {
	Room      *domain.Room `json:"room,omitempty"`
	ErrorCode Kind         `json:"error_code,omitempty"`
	Message   string       `json:"message,omitempty"`
}

// ListRoomsResponse is the response for listing rooms.
type ListRoomsResponse struct {
	Rooms []domain.Room `json:"rooms"`
	Total int           `json:"total"`
}

// Err rebuilds the error carried by the response, if any.
func (r RoomResponse) Err() error {
	if r.ErrorCode == "" {
		return nil
	}
	return ErrorFromKind(r.ErrorCode, r.Message)
}

func roomResponse(room domain.Room, err error) RoomResponse {
	if err != nil {
		return RoomResponse{ErrorCode: KindOf(err), Message: err.Error()}
	}
	return RoomResponse{Room: &room}
}
