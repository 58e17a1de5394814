package game

import (
	"sync"

	domain "github.com/example/drawing-game-demo/domain/game"
)

// player is the mutable state of a participant.
type player struct {
	username string
	score    int
	answered bool
}

func (p *player) toDomain() domain.Player {
	return domain.Player{
		Username:   p.username,
		Score:      p.score,
		IsAnswered: p.answered,
	}
}

// Room holds the state of one game. Every field is guarded by mu.
// Live connections are kept by the broadcast hub under the room id.
type Room struct {
	mu sync.Mutex

	id       string
	players  []*player // join order is turn order
	drawer   string    // username of the current drawer, empty when none
	word     string
	duration *int
	playing  bool
	round    int
	strokes  StrokeHistory
	closed   bool
	seq      uint64
}

func newRoom(id, word string, seq uint64) *Room {
	return &Room{
		id:    id,
		word:  word,
		round: 1,
		seq:   seq,
	}
}

// ID returns the room id.
func (r *Room) ID() string {
	return r.id
}

// Snapshot returns the serialized state of the room. The boolean is false
// when the room has been removed.
func (r *Room) Snapshot() (domain.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return domain.Room{}, false
	}
	return r.snapshotLocked(), true
}

func (r *Room) snapshotLocked() domain.Room {
	players := make([]domain.Player, len(r.players))
	var current *domain.Player
	for i, p := range r.players {
		players[i] = p.toDomain()
		if p.username == r.drawer {
			drawer := p.toDomain()
			current = &drawer
		}
	}

	var duration *int
	if r.duration != nil {
		d := *r.duration
		duration = &d
	}

	return domain.Room{
		ID:              r.id,
		Players:         players,
		IsPlaying:       r.playing,
		CurrentPlayer:   current,
		CurrentDuration: duration,
		CurrentWord:     r.word,
		ActiveStrokes:   r.strokes.Active(),
	}
}

func (r *Room) indexOf(username string) int {
	for i, p := range r.players {
		if p.username == username {
			return i
		}
	}
	return -1
}

func (r *Room) player(username string) *player {
	if i := r.indexOf(username); i >= 0 {
		return r.players[i]
	}
	return nil
}

// addPlayer appends a player unless the username is already present.
func (r *Room) addPlayer(username string) bool {
	if r.indexOf(username) >= 0 {
		return false
	}
	r.players = append(r.players, &player{username: username})
	return true
}

// removePlayer drops a player and returns its former index, or -1.
func (r *Room) removePlayer(username string) int {
	i := r.indexOf(username)
	if i < 0 {
		return -1
	}
	r.players = append(r.players[:i], r.players[i+1:]...)
	return i
}

// recompute refreshes the derived fields after the player set changed.
func (r *Room) recompute() {
	r.playing = len(r.players) > 1
	if len(r.players) == 0 {
		r.drawer = ""
		return
	}
	if r.drawer == "" || r.indexOf(r.drawer) < 0 {
		r.drawer = r.players[0].username
	}
}

func (r *Room) scores() map[string]int {
	scores := make(map[string]int, len(r.players))
	for _, p := range r.players {
		scores[p.username] = p.score
	}
	return scores
}
