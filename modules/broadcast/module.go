package broadcast

import (
	"context"
	"fmt"

	"github.com/example/drawing-game-demo/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// BroadcastModule owns the live client hub and reacts to game events.
type BroadcastModule struct {
	hub       *Hub
	cancelHub context.CancelFunc
	logger    types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*BroadcastModule)(nil)
var _ mono.EventConsumerModule = (*BroadcastModule)(nil)
var _ mono.HealthCheckableModule = (*BroadcastModule)(nil)

// NewModule creates a new BroadcastModule.
func NewModule(logger types.Logger) *BroadcastModule {
	return &BroadcastModule{
		hub:    NewHub(logger),
		logger: logger,
	}
}

// Name returns the module name.
func (m *BroadcastModule) Name() string {
	return "broadcast"
}

// Start runs the hub until Stop.
func (m *BroadcastModule) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	m.logger.Info("Broadcast module started")
	return nil
}

// Stop closes every live client and waits for the hub to finish.
func (m *BroadcastModule) Stop(_ context.Context) error {
	clientCount := m.hub.ClientCount()
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	m.logger.Info("Broadcast module stopped", "clients", clientCount)
	return nil
}

// Health returns the health status.
func (m *BroadcastModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
		},
	}
}

// RegisterEventConsumers registers event handlers.
func (m *BroadcastModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomClosedV1, m.handleRoomClosed, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomClosed consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.PlayerJoinedV1, m.handlePlayerJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register PlayerJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.PlayerLeftV1, m.handlePlayerLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register PlayerLeft consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", "RoomClosed, PlayerJoined, PlayerLeft")
	return nil
}

// Event handlers

func (m *BroadcastModule) handleRoomClosed(_ context.Context, event events.RoomClosedEvent, _ *mono.Msg) error {
	if dropped := m.hub.DropRoom(event.RoomID); dropped > 0 {
		m.logger.Warn("Closed lingering clients of removed room", "roomID", event.RoomID, "clients", dropped)
	}
	return nil
}

func (m *BroadcastModule) handlePlayerJoined(_ context.Context, event events.PlayerJoinedEvent, _ *mono.Msg) error {
	m.logger.Info("Player joined",
		"roomID", event.RoomID,
		"username", event.Username,
		"roomClients", m.hub.RoomClientCount(event.RoomID))
	return nil
}

func (m *BroadcastModule) handlePlayerLeft(_ context.Context, event events.PlayerLeftEvent, _ *mono.Msg) error {
	m.logger.Info("Player left",
		"roomID", event.RoomID,
		"username", event.Username,
		"roomClients", m.hub.RoomClientCount(event.RoomID))
	return nil
}

// GetHub returns the hub shared with the game and API modules.
func (m *BroadcastModule) GetHub() *Hub {
	return m.hub
}
