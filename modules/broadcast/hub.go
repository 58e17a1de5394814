package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-monolith/mono/pkg/types"
)

// DefaultSendBuffer is the outbound queue size of a client.
const DefaultSendBuffer = 256

// ErrAlreadyBound is returned when a username already has a live connection in the room.
var ErrAlreadyBound = errors.New("username already bound to a connection in this room")

// Client represents a live connection bound to a room under a username.
// Frames are queued on send and written to the socket by the owner of the client.
type Client struct {
	RoomID   string
	Username string

	send chan []byte
	done chan struct{}
	once sync.Once
}

// NewClient creates a client with an outbound queue of the given size.
func NewClient(roomID, username string, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}
	return &Client{
		RoomID:   roomID,
		Username: username,
		send:     make(chan []byte, buffer),
		done:     make(chan struct{}),
	}
}

// Send returns the outbound frame queue.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// Done is closed once the client has been closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close marks the client as gone. It is safe to call more than once.
// The send queue is never closed so concurrent enqueues cannot panic.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// Enqueue queues a frame without blocking. It reports false when the
// client is closed or its queue is full.
func (c *Client) Enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Hub manages live clients per room and fans frames out to them.
// It never calls back into room state, so it may be used while a room lock is held.
type Hub struct {
	rooms  map[string]map[string]*Client // roomID -> username -> client
	done   chan struct{}
	mu     sync.RWMutex
	logger types.Logger
}

// NewHub creates a new Hub.
func NewHub(logger types.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[string]*Client),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run blocks until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.logger.Info("Hub shutting down", "clients", h.ClientCount())
	h.closeAllClients()
	close(h.done)
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.rooms {
		for _, client := range clients {
			client.Close()
		}
	}
	h.rooms = make(map[string]map[string]*Client)
}

// Register binds a client to its room. It fails with ErrAlreadyBound when the
// username already has a live client in that room.
func (h *Hub) Register(client *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.rooms[client.RoomID]
	if clients == nil {
		clients = make(map[string]*Client)
		h.rooms[client.RoomID] = clients
	}
	if _, exists := clients[client.Username]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyBound, client.Username)
	}
	clients[client.Username] = client
	h.logger.Debug("Client registered", "roomID", client.RoomID, "username", client.Username)
	return nil
}

// Unregister removes a client from its room. A newer client bound under the
// same username is left untouched.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.rooms[client.RoomID]
	if clients == nil || clients[client.Username] != client {
		return
	}
	delete(clients, client.Username)
	if len(clients) == 0 {
		delete(h.rooms, client.RoomID)
	}
	h.logger.Debug("Client unregistered", "roomID", client.RoomID, "username", client.Username)
}

// IsBound reports whether username has a live client in the room.
func (h *Hub) IsBound(roomID, username string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[roomID][username]
	return ok
}

// BroadcastState serializes payload once and queues it for every client of
// the room except exclude (empty means nobody is excluded).
func (h *Hub) BroadcastState(roomID string, payload any, exclude string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast frame: %w", err)
	}
	h.RelayRaw(roomID, data, exclude)
	return nil
}

// RelayRaw queues frame verbatim for every client of the room except exclude.
// Delivery is best-effort per client: a client whose queue is full or closed
// is closed so that its session runs the disconnect path.
func (h *Hub) RelayRaw(roomID string, frame []byte, exclude string) int {
	var failed []*Client
	delivered := 0

	h.mu.RLock()
	for username, client := range h.rooms[roomID] {
		if username == exclude {
			continue
		}
		if client.Enqueue(frame) {
			delivered++
			continue
		}
		failed = append(failed, client)
	}
	h.mu.RUnlock()

	for _, client := range failed {
		h.logger.Warn("Dropping slow or closed client", "roomID", roomID, "username", client.Username)
		client.Close()
	}
	return delivered
}

// Send queues a frame for a single client of the room.
func (h *Hub) Send(roomID, username string, frame []byte) bool {
	h.mu.RLock()
	client, ok := h.rooms[roomID][username]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	if !client.Enqueue(frame) {
		client.Close()
		return false
	}
	return true
}

// DropRoom closes and forgets every client of a room.
func (h *Hub) DropRoom(roomID string) int {
	h.mu.Lock()
	clients := h.rooms[roomID]
	delete(h.rooms, roomID)
	h.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
	return len(clients)
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, clients := range h.rooms {
		count += len(clients)
	}
	return count
}

// RoomClientCount returns the number of clients in a room.
func (h *Hub) RoomClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
