package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	domain "github.com/example/drawing-game-demo/domain/game"
	"github.com/example/drawing-game-demo/events"
	"github.com/example/drawing-game-demo/modules/broadcast"
	"golang.org/x/time/rate"
)

// Session dispatches the frames of one connection to its room.
type Session struct {
	registry *Registry
	room     *Room
	client   *broadcast.Client
	limiter  *rate.Limiter

	leaveOnce sync.Once
}

// Username returns the username the session is bound to.
func (s *Session) Username() string {
	return s.client.Username
}

// RoomID returns the id of the session's room.
func (s *Session) RoomID() string {
	return s.room.id
}

// Client returns the connection the session writes to.
func (s *Session) Client() *broadcast.Client {
	return s.client
}

// Handle decodes and applies one inbound frame. It returns done when the
// connection loop must end. A non-nil error is a protocol error that has
// to be reported to this connection only.
func (s *Session) Handle(raw []byte) (done bool, err error) {
	cmd, err := Decode(raw)
	if err != nil {
		if errors.Is(err, ErrProtocol) {
			return true, err
		}
		s.registry.logger.Debug("Dropping frame", "roomID", s.room.id, "username", s.Username(), "reason", err)
		return false, nil
	}

	switch c := cmd.(type) {
	case JoinCommand:
		s.mutate(func() []any {
			s.room.recompute()
			s.registry.broadcastLocked(s.room, MethodJoin)
			return nil
		})
	case DrawStartCommand:
		s.mutate(func() []any {
			s.room.strokes.Start(c.Offset)
			s.relayLocked(raw)
			return nil
		})
	case DrawUpdateCommand:
		s.mutate(func() []any {
			if s.room.strokes.Update(c.Offset) {
				s.relayLocked(raw)
			}
			return nil
		})
	case DrawEndCommand:
		s.mutate(func() []any {
			s.room.strokes.End()
			s.relayLocked(raw)
			return nil
		})
	case DrawUndoCommand:
		s.mutate(func() []any {
			s.room.strokes.Undo()
			s.relayLocked(raw)
			return nil
		})
	case DrawRedoCommand:
		s.mutate(func() []any {
			s.room.strokes.Redo()
			s.relayLocked(raw)
			return nil
		})
	case AnswerCommand:
		if !s.limiter.Allow() {
			s.SendError(ErrRateLimited)
			return false, nil
		}
		s.mutate(func() []any {
			return s.answerLocked(c.Answer)
		})
	case TickerCommand:
		s.mutate(func() []any {
			s.room.duration = c.Duration
			s.registry.broadcastLocked(s.room, MethodTicker)
			return nil
		})
	case TimeoutCommand:
		s.mutate(func() []any {
			result := s.room.completeRound(ReasonTimeout, s.registry.pickWord)
			s.registry.broadcastLocked(s.room, MethodTimeout)
			return []any{result}
		})
	case DisconnectCommand:
		s.Leave()
		return true, nil
	default:
		return true, fmt.Errorf("unhandled command %T", cmd)
	}

	if s.closed() {
		return true, nil
	}
	return false, nil
}

// mutate runs fn under the room lock and publishes the events it returns
// after the lock is released. Closed rooms are left untouched.
func (s *Session) mutate(fn func() []any) {
	s.registry.publish(s.locked(fn)...)
}

func (s *Session) locked(fn func() []any) []any {
	s.room.mu.Lock()
	defer s.room.mu.Unlock()
	if s.room.closed {
		return nil
	}
	return fn()
}

func (s *Session) closed() bool {
	select {
	case <-s.client.Done():
		return true
	default:
	}
	s.room.mu.Lock()
	defer s.room.mu.Unlock()
	return s.room.closed
}

// relayLocked forwards a drawing frame verbatim to everybody but the sender.
func (s *Session) relayLocked(raw []byte) {
	s.registry.hub.RelayRaw(s.room.id, raw, s.Username())
}

func (s *Session) answerLocked(guess string) []any {
	room := s.room
	correct := room.scoreAnswer(s.Username(), guess)

	var evts []any
	if room.roundComplete() {
		evts = append(evts, room.completeRound(ReasonAnswered, s.registry.pickWord))
	}

	text := guess
	if correct {
		text = CorrectAnswerText
	}
	frame := AnswerFrame{
		Method:    MethodAnswer,
		Username:  s.Username(),
		IsCorrect: correct,
		Answer:    text,
		Room:      room.snapshotLocked(),
	}
	if err := s.registry.hub.BroadcastState(room.id, frame, ""); err != nil {
		s.registry.logger.Error("Failed to broadcast answer", "roomID", room.id, "error", err)
	}
	return evts
}

// SendError queues an error frame for this connection only.
func (s *Session) SendError(err error) {
	frame := EncodeError(err)
	if !s.registry.hub.Send(s.room.id, s.Username(), frame) {
		s.client.Enqueue(frame)
	}
}

// Leave removes the player and its connection from the room. It runs at
// most once per session whatever ends the connection. When the room becomes
// empty it is removed from the registry; otherwise the remaining
// connections receive the new state.
func (s *Session) Leave() {
	s.leaveOnce.Do(s.leave)
}

func (s *Session) leave() {
	r := s.registry
	room := s.room
	username := s.Username()

	room.mu.Lock()
	r.hub.Unregister(s.client)
	emptied := false
	if !room.closed {
		room.removePlayer(username)
		room.recompute()

		if len(room.players) == 0 {
			room.closed = true
			room.strokes.Reset()
			emptied = true
		} else {
			r.broadcastLocked(room, MethodDisconnect)
		}
	}
	players := len(room.players)
	if room.closed && !emptied {
		players = 0
	}
	room.mu.Unlock()

	s.client.Close()

	evts := []any{events.PlayerLeftEvent{
		RoomID:    room.id,
		Username:  username,
		Players:   players,
		Timestamp: time.Now(),
	}}
	if emptied {
		r.forget(room)
		r.logger.Info("Room removed after last player left", "roomID", room.id)
		evts = append(evts, events.RoomClosedEvent{RoomID: room.id, Timestamp: time.Now()})
	}
	r.logger.Info("Player left room", "roomID", room.id, "username", username, "players", players)
	r.publish(evts...)
}

// Snapshot returns the current state of the session's room.
func (s *Session) Snapshot() (domain.Room, bool) {
	return s.room.Snapshot()
}
