package game

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	domain "github.com/example/drawing-game-demo/domain/game"
	"github.com/example/drawing-game-demo/events"
	"github.com/example/drawing-game-demo/modules/broadcast"
	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/time/rate"
)

// maxIDAttempts bounds the retries on room id collisions.
const maxIDAttempts = 16

// Answer rate limit per connection.
const (
	answerRate  rate.Limit = 10
	answerBurst            = 20
)

// Publisher receives domain events once the room lock has been released.
type Publisher interface {
	Publish(event any)
}

// Registry maps room ids to rooms. Lock order is registry, then room, then hub.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	seq   uint64

	rngMu sync.Mutex
	rng   *rand.Rand

	hub       *broadcast.Hub
	publisher Publisher
	logger    types.Logger
}

// NewRegistry creates a registry drawing ids and words from rng.
func NewRegistry(hub *broadcast.Hub, rng *rand.Rand, logger types.Logger) *Registry {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Registry{
		rooms:  make(map[string]*Room),
		rng:    rng,
		hub:    hub,
		logger: logger,
	}
}

// SetPublisher sets the receiver of domain events.
func (r *Registry) SetPublisher(p Publisher) {
	r.publisher = p
}

func (r *Registry) publish(evts ...any) {
	if r.publisher == nil {
		return
	}
	for _, evt := range evts {
		r.publisher.Publish(evt)
	}
}

func (r *Registry) pickWord() string {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return PickWord(r.rng)
}

func (r *Registry) newID() (string, error) {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return NewRoomID(r.rng)
}

// Create registers an empty room with a fresh id and an initial word.
func (r *Registry) Create() (domain.Room, error) {
	word := r.pickWord()

	r.mu.Lock()
	var room *Room
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := r.newID()
		if err != nil {
			r.mu.Unlock()
			return domain.Room{}, err
		}
		if _, exists := r.rooms[id]; exists {
			continue
		}
		r.seq++
		room = newRoom(id, word, r.seq)
		r.rooms[id] = room
		break
	}
	r.mu.Unlock()

	if room == nil {
		return domain.Room{}, fmt.Errorf("failed to allocate a unique room id after %d attempts", maxIDAttempts)
	}

	snapshot, _ := room.Snapshot()
	r.logger.Info("Room created", "roomID", room.id)
	r.publish(events.RoomCreatedEvent{RoomID: room.id, Timestamp: time.Now()})
	return snapshot, nil
}

// List returns every live room in creation order.
func (r *Registry) List() []domain.Room {
	r.mu.RLock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].seq < rooms[j].seq })

	result := make([]domain.Room, 0, len(rooms))
	for _, room := range rooms {
		if snapshot, ok := room.Snapshot(); ok {
			result = append(result, snapshot)
		}
	}
	return result
}

// Get returns the state of a room.
func (r *Registry) Get(id string) (domain.Room, error) {
	room := r.lookup(id)
	if room == nil {
		return domain.Room{}, ErrRoomNotFound
	}
	snapshot, ok := room.Snapshot()
	if !ok {
		return domain.Room{}, ErrRoomNotFound
	}
	return snapshot, nil
}

// Remove deletes a room and closes its connections. It reports whether the room existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	room, ok := r.rooms[id]
	if ok {
		delete(r.rooms, id)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}

	room.mu.Lock()
	wasClosed := room.closed
	room.closed = true
	room.strokes.Reset()
	room.mu.Unlock()

	r.hub.DropRoom(id)
	if !wasClosed {
		r.logger.Info("Room removed", "roomID", id)
		r.publish(events.RoomClosedEvent{RoomID: id, Timestamp: time.Now()})
	}
	return true
}

// Count returns the number of registered rooms.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func (r *Registry) lookup(id string) *Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[id]
}

// forget drops room from the map if it is still the registered instance.
func (r *Registry) forget(room *Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[room.id] == room {
		delete(r.rooms, room.id)
	}
}

// ValidateJoin runs the join checks without changing any state.
func (r *Registry) ValidateJoin(id, username string) (domain.Room, error) {
	if err := ValidateUsername(username); err != nil {
		return domain.Room{}, err
	}
	room := r.lookup(id)
	if room == nil {
		return domain.Room{}, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return domain.Room{}, ErrRoomNotFound
	}
	if r.hub.IsBound(id, username) {
		return domain.Room{}, ErrUsernameTaken
	}
	return room.snapshotLocked(), nil
}

// Join binds client to its room under its username and broadcasts the new
// room state to every connection of the room. The returned session handles
// the frames of that connection.
func (r *Registry) Join(client *broadcast.Client) (*Session, error) {
	if err := ValidateUsername(client.Username); err != nil {
		return nil, err
	}
	room := r.lookup(client.RoomID)
	if room == nil {
		return nil, ErrRoomNotFound
	}

	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	if err := r.hub.Register(client); err != nil {
		room.mu.Unlock()
		if errors.Is(err, broadcast.ErrAlreadyBound) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to bind connection: %w", err)
	}
	room.addPlayer(client.Username)
	room.recompute()
	r.broadcastLocked(room, MethodJoin)
	players := len(room.players)
	room.mu.Unlock()

	r.logger.Info("Player joined room", "roomID", room.id, "username", client.Username, "players", players)
	r.publish(events.PlayerJoinedEvent{
		RoomID:    room.id,
		Username:  client.Username,
		Players:   players,
		Timestamp: time.Now(),
	})

	return &Session{
		registry: r,
		room:     room,
		client:   client,
		limiter:  rate.NewLimiter(answerRate, answerBurst),
	}, nil
}

// broadcastLocked sends the room state to every connection. room.mu must be held.
func (r *Registry) broadcastLocked(room *Room, method string) {
	frame := StateFrame{Method: method, Room: room.snapshotLocked()}
	if err := r.hub.BroadcastState(room.id, frame, ""); err != nil {
		r.logger.Error("Failed to broadcast room state", "roomID", room.id, "method", method, "error", err)
	}
}
