package wsserver

import (
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/drawing-game-demo/modules/broadcast"
	"github.com/example/drawing-game-demo/modules/game"
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

var errClosed = errors.New("use of closed connection")

// fakeConn is an in-memory socket. Frames pushed on in are read by the
// session; text frames written by the session arrive on out.
type fakeConn struct {
	in        chan []byte
	out       chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 16),
		out:    make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-c.in:
		return websocket.TextMessage, msg, nil
	case <-c.closed:
		return 0, nil, io.EOF
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-c.closed:
		return errClosed
	default:
	}
	if messageType == websocket.TextMessage {
		c.out <- data
	}
	return nil
}

func (c *fakeConn) SetWriteDeadline(_ time.Time) error {
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) send(frame string) {
	c.in <- []byte(frame)
}

type frame struct {
	Method       string         `json:"method"`
	ErrorMessage string         `json:"error_message"`
	Room         map[string]any `json:"game_room"`
}

func (c *fakeConn) next(t *testing.T) frame {
	t.Helper()
	select {
	case raw := <-c.out:
		var f frame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return frame{}
	}
}

func (c *fakeConn) nextRaw(t *testing.T) string {
	t.Helper()
	select {
	case raw := <-c.out:
		return string(raw)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return ""
	}
}

type testServer struct {
	handlers *Handlers
	registry *game.Registry
	hub      *broadcast.Hub
}

func newTestServer() *testServer {
	logger := &mockLogger{}
	hub := broadcast.NewHub(logger)
	registry := game.NewRegistry(hub, rand.New(rand.NewSource(1)), logger)
	return &testServer{
		handlers: NewHandlers(registry, logger),
		registry: registry,
		hub:      hub,
	}
}

// serve runs a session in the background and returns a channel closed when it ends.
func (s *testServer) serve(conn *fakeConn, roomID, username string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.handlers.Serve(conn, roomID, username)
	}()
	return done
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end")
	}
}

func playerCount(f frame) int {
	players, _ := f.Room["connectedClients"].([]any)
	return len(players)
}

func TestServe_JoinRejected(t *testing.T) {
	srv := newTestServer()
	room, err := srv.registry.Create()
	require.NoError(t, err)

	tests := []struct {
		name     string
		roomID   string
		username string
		want     string
	}{
		{name: "empty username", roomID: room.ID, username: "", want: game.MessageUsernameEmpty},
		{name: "unknown room", roomID: "missing", username: "alice", want: game.MessageRoomNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newFakeConn()
			waitDone(t, srv.serve(conn, tt.roomID, tt.username))

			f := conn.next(t)
			assert.Equal(t, tt.want, f.ErrorMessage)
			select {
			case <-conn.closed:
			default:
				t.Fatal("connection should be closed")
			}
		})
	}
}

func TestServe_DuplicateUsername(t *testing.T) {
	srv := newTestServer()
	room, err := srv.registry.Create()
	require.NoError(t, err)

	first := newFakeConn()
	firstDone := srv.serve(first, room.ID, "alice")
	assert.Equal(t, game.MethodJoin, first.next(t).Method)

	second := newFakeConn()
	waitDone(t, srv.serve(second, room.ID, "alice"))
	assert.Equal(t, game.MessageUsernameTaken, second.next(t).ErrorMessage)

	require.NoError(t, first.Close())
	waitDone(t, firstDone)
}

func TestServe_GameFlow(t *testing.T) {
	srv := newTestServer()
	room, err := srv.registry.Create()
	require.NoError(t, err)

	alice := newFakeConn()
	aliceDone := srv.serve(alice, room.ID, "alice")
	f := alice.next(t)
	assert.Equal(t, game.MethodJoin, f.Method)
	assert.Equal(t, 1, playerCount(f))

	bob := newFakeConn()
	bobDone := srv.serve(bob, room.ID, "bob")
	assert.Equal(t, 2, playerCount(bob.next(t)))
	f = alice.next(t)
	assert.Equal(t, game.MethodJoin, f.Method)
	assert.Equal(t, true, f.Room["isPlaying"])

	start := `{"method":"drawing","type":"start","offset":{"dx":1,"dy":2}}`
	alice.send(start)
	assert.Equal(t, start, bob.nextRaw(t))

	bob.send(`{"method":"ticker","duration":10}`)
	assert.Equal(t, game.MethodTicker, alice.next(t).Method)
	assert.Equal(t, game.MethodTicker, bob.next(t).Method)

	// Closing the socket runs the disconnect path.
	require.NoError(t, bob.Close())
	waitDone(t, bobDone)
	f = alice.next(t)
	assert.Equal(t, game.MethodDisconnect, f.Method)
	assert.Equal(t, 1, playerCount(f))

	alice.send(`{"method":"disconnect"}`)
	waitDone(t, aliceDone)

	_, err = srv.registry.Get(room.ID)
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
	assert.Zero(t, srv.hub.ClientCount())
}

func TestServe_ProtocolErrorEndsOnlyThatConnection(t *testing.T) {
	srv := newTestServer()
	room, err := srv.registry.Create()
	require.NoError(t, err)

	alice := newFakeConn()
	aliceDone := srv.serve(alice, room.ID, "alice")
	alice.next(t)

	bob := newFakeConn()
	bobDone := srv.serve(bob, room.ID, "bob")
	bob.next(t)
	alice.next(t)

	bob.send(`{not json`)
	assert.Contains(t, bob.next(t).ErrorMessage, game.MessageInvalidFrame+": invalid character")
	waitDone(t, bobDone)

	assert.Equal(t, game.MethodDisconnect, alice.next(t).Method)

	alice.send(`{"method":"join"}`)
	assert.Equal(t, game.MethodJoin, alice.next(t).Method)

	require.NoError(t, alice.Close())
	waitDone(t, aliceDone)
}

func TestServe_UnknownFrameKeepsConnection(t *testing.T) {
	srv := newTestServer()
	room, err := srv.registry.Create()
	require.NoError(t, err)

	alice := newFakeConn()
	done := srv.serve(alice, room.ID, "alice")
	alice.next(t)

	alice.send(`{"method":"dance"}`)
	alice.send(`{"method":"join"}`)
	assert.Equal(t, game.MethodJoin, alice.next(t).Method)

	require.NoError(t, alice.Close())
	waitDone(t, done)
}

func TestServe_HubShutdownEndsSession(t *testing.T) {
	srv := newTestServer()
	room, err := srv.registry.Create()
	require.NoError(t, err)

	alice := newFakeConn()
	done := srv.serve(alice, room.ID, "alice")
	alice.next(t)

	srv.hub.DropRoom(room.ID)
	waitDone(t, done)

	_, err = srv.registry.Get(room.ID)
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
}

func TestRegisterRoutes_RequiresUpgrade(t *testing.T) {
	srv := newTestServer()
	app := fiber.New()
	srv.handlers.RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/ws/rooms/abc?username=alice", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
