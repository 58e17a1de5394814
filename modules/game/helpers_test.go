package game

import (
	"encoding/json"
	"math/rand"
	"sync"
	"testing"

	domain "github.com/example/drawing-game-demo/domain/game"
	"github.com/example/drawing-game-demo/modules/broadcast"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []any
}

func (p *recordingPublisher) Publish(event any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) all() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]any, len(p.events))
	copy(out, p.events)
	return out
}

// testFrame decodes every outbound frame kind.
type testFrame struct {
	Method       string      `json:"method"`
	Username     string      `json:"username"`
	IsCorrect    bool        `json:"isCorrect"`
	Answer       string      `json:"answer"`
	Room         domain.Room `json:"game_room"`
	ErrorMessage string      `json:"error_message"`
	Type         string      `json:"type"`
}

func newTestRegistry(t *testing.T) (*Registry, *recordingPublisher) {
	t.Helper()
	logger := &mockLogger{}
	reg := NewRegistry(broadcast.NewHub(logger), rand.New(rand.NewSource(42)), logger)
	pub := &recordingPublisher{}
	reg.SetPublisher(pub)
	return reg, pub
}

func createRoom(t *testing.T, reg *Registry, word string) string {
	t.Helper()
	room, err := reg.Create()
	require.NoError(t, err)
	if word != "" {
		r := reg.lookup(room.ID)
		r.mu.Lock()
		r.word = word
		r.mu.Unlock()
	}
	return room.ID
}

func join(t *testing.T, reg *Registry, roomID, username string) *Session {
	t.Helper()
	session, err := reg.Join(broadcast.NewClient(roomID, username, broadcast.DefaultSendBuffer))
	require.NoError(t, err)
	return session
}

func drain(s *Session) []testFrame {
	var frames []testFrame
	for {
		select {
		case raw := <-s.Client().Send():
			var f testFrame
			if err := json.Unmarshal(raw, &f); err == nil {
				frames = append(frames, f)
			}
		default:
			return frames
		}
	}
}

func drainRaw(s *Session) [][]byte {
	var frames [][]byte
	for {
		select {
		case raw := <-s.Client().Send():
			frames = append(frames, raw)
		default:
			return frames
		}
	}
}

func handle(t *testing.T, s *Session, frame string) bool {
	t.Helper()
	done, err := s.Handle([]byte(frame))
	require.NoError(t, err)
	return done
}

func fixedWord(word string) func() string {
	return func() string { return word }
}
