package game

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/drawing-game-demo/domain/game"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// GamePort defines the room operations available to other modules.
type GamePort interface {
	CreateRoom(ctx context.Context) (*domain.Room, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
	GetRoom(ctx context.Context, roomID string) (*domain.Room, error)
	ValidateJoin(ctx context.Context, roomID, username string) (*domain.Room, error)
}

// GameAdapter implements GamePort using the service container.
type GameAdapter struct {
	container mono.ServiceContainer
}

// NewGameAdapter creates a new GameAdapter.
func NewGameAdapter(container mono.ServiceContainer) GamePort {
	if container == nil {
		panic("game: ServiceContainer is nil")
	}
	return &GameAdapter{container: container}
}

// CreateRoom creates a new room.
func (a *GameAdapter) CreateRoom(ctx context.Context) (*domain.Room, error) {
	req := CreateRoomRequest{}
	var resp RoomResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceCreateRoom,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Room, nil
}

// ListRooms returns every live room.
func (a *GameAdapter) ListRooms(ctx context.Context) ([]domain.Room, error) {
	req := ListRoomsRequest{}
	var resp ListRoomsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceListRooms,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return resp.Rooms, nil
}

// GetRoom retrieves a room by ID.
func (a *GameAdapter) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	req := GetRoomRequest{RoomID: roomID}
	var resp RoomResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetRoom,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Room, nil
}

// ValidateJoin checks whether username may join the room.
func (a *GameAdapter) ValidateJoin(ctx context.Context, roomID, username string) (*domain.Room, error) {
	req := ValidateJoinRequest{RoomID: roomID, Username: username}
	var resp RoomResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceValidateJoin,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to validate join: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Room, nil
}
