package game

import (
	"time"

	"github.com/example/drawing-game-demo/events"
)

// Reasons a round ends.
const (
	ReasonAnswered = "answered"
	ReasonTimeout  = "timeout"
)

// roundComplete reports whether every player except the drawer has answered.
// It holds trivially when the drawer is alone.
func (r *Room) roundComplete() bool {
	for _, p := range r.players {
		if p.username == r.drawer {
			continue
		}
		if !p.answered {
			return false
		}
	}
	return true
}

// completeRound closes the current round and starts the next one: strokes
// are cleared, the drawer advances in join order, answers are reset and a
// new word is picked.
func (r *Room) completeRound(reason string, pick func() string) events.RoundCompletedEvent {
	result := events.RoundCompletedEvent{
		RoomID:    r.id,
		Round:     r.round,
		Drawer:    r.drawer,
		Word:      r.word,
		Reason:    reason,
		Scores:    r.scores(),
		Timestamp: time.Now(),
	}

	r.strokes.Reset()
	r.advanceDrawer()
	for _, p := range r.players {
		p.answered = false
	}
	r.word = pick()
	r.round++

	return result
}

func (r *Room) advanceDrawer() {
	if len(r.players) == 0 {
		r.drawer = ""
		return
	}
	next := (r.indexOf(r.drawer) + 1) % len(r.players)
	r.drawer = r.players[next].username
}

// scoreAnswer applies a guess from username and reports whether it matched.
// Every match scores one point for the drawer and one for the guesser, so a
// drawer guessing its own word gets both.
func (r *Room) scoreAnswer(username, guess string) bool {
	if !matchesWord(guess, r.word) {
		return false
	}
	if drawer := r.player(r.drawer); drawer != nil {
		drawer.score++
	}
	if guesser := r.player(username); guesser != nil {
		guesser.score++
		guesser.answered = true
	}
	return true
}
