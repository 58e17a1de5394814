package game

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/example/drawing-game-demo/events"
	"github.com/example/drawing-game-demo/modules/broadcast"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module owns the room registry and exposes it as request-reply services.
type Module struct {
	registry *Registry
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new game module. Rooms are bound to connections of hub;
// rng drives room ids and word selection.
func NewModule(hub *broadcast.Hub, rng *rand.Rand, logger types.Logger) *Module {
	m := &Module{
		registry: NewRegistry(hub, rng, logger),
		logger:   logger,
	}
	m.registry.SetPublisher(m)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "game"
}

// Registry returns the room registry used by live connections.
func (m *Module) Registry() *Registry {
	return m.registry
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.RoomCreatedV1.ToBase(),
		events.PlayerJoinedV1.ToBase(),
		events.PlayerLeftV1.ToBase(),
		events.RoundCompletedV1.ToBase(),
		events.RoomClosedV1.ToBase(),
	}
}

// Publish sends a domain event produced by the registry to the event bus.
func (m *Module) Publish(event any) {
	if m.eventBus == nil {
		return
	}

	var err error
	switch e := event.(type) {
	case events.RoomCreatedEvent:
		err = events.RoomCreatedV1.Publish(m.eventBus, e, nil)
	case events.PlayerJoinedEvent:
		err = events.PlayerJoinedV1.Publish(m.eventBus, e, nil)
	case events.PlayerLeftEvent:
		err = events.PlayerLeftV1.Publish(m.eventBus, e, nil)
	case events.RoundCompletedEvent:
		err = events.RoundCompletedV1.Publish(m.eventBus, e, nil)
	case events.RoomClosedEvent:
		err = events.RoomClosedV1.Publish(m.eventBus, e, nil)
	default:
		err = fmt.Errorf("unknown event type %T", event)
	}
	if err != nil {
		m.logger.Warn("Failed to publish event", "event", fmt.Sprintf("%T", event), "error", err)
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreateRoom, json.Unmarshal, json.Marshal, m.createRoom,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreateRoom, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListRooms, json.Unmarshal, json.Marshal, m.listRooms,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListRooms, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetRoom, json.Unmarshal, json.Marshal, m.getRoom,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetRoom, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceValidateJoin, json.Unmarshal, json.Marshal, m.validateJoin,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceValidateJoin, err)
	}

	m.logger.Info("Registered services", "services", "create-room, list-rooms, get-room, validate-join")
	return nil
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Game module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Game module stopped", "rooms", m.registry.Count())
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"rooms": m.registry.Count(),
		},
	}
}

// Service handlers

func (m *Module) createRoom(_ context.Context, _ CreateRoomRequest, _ *mono.Msg) (RoomResponse, error) {
	room, err := m.registry.Create()
	if err != nil {
		return RoomResponse{}, err
	}
	return roomResponse(room, nil), nil
}

func (m *Module) listRooms(_ context.Context, _ ListRoomsRequest, _ *mono.Msg) (ListRoomsResponse, error) {
	rooms := m.registry.List()
	return ListRoomsResponse{Rooms: rooms, Total: len(rooms)}, nil
}

func (m *Module) getRoom(_ context.Context, req GetRoomRequest, _ *mono.Msg) (RoomResponse, error) {
	return roomResponse(m.registry.Get(req.RoomID)), nil
}

func (m *Module) validateJoin(_ context.Context, req ValidateJoinRequest, _ *mono.Msg) (RoomResponse, error) {
	return roomResponse(m.registry.ValidateJoin(req.RoomID, req.Username)), nil
}
