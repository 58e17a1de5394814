package broadcast

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
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

func queued(c *Client) []string {
	var frames []string
	for {
		select {
		case f := <-c.Send():
			frames = append(frames, string(f))
		default:
			return frames
		}
	}
}

func isClosed(c *Client) bool {
	select {
	case <-c.Done():
		return true
	default:
		return false
	}
}

func TestHub_RegisterRejectsDuplicateUsername(t *testing.T) {
	hub := NewHub(&mockLogger{})

	require.NoError(t, hub.Register(NewClient("room1", "alice", 1)))
	err := hub.Register(NewClient("room1", "alice", 1))
	assert.ErrorIs(t, err, ErrAlreadyBound)

	assert.NoError(t, hub.Register(NewClient("room2", "alice", 1)), "same username in another room")
	assert.Equal(t, 2, hub.ClientCount())
	assert.Equal(t, 1, hub.RoomClientCount("room1"))
}

func TestHub_UnregisterOnlyRemovesSameClient(t *testing.T) {
	hub := NewHub(&mockLogger{})
	old := NewClient("room1", "alice", 1)
	require.NoError(t, hub.Register(old))
	hub.Unregister(old)

	fresh := NewClient("room1", "alice", 1)
	require.NoError(t, hub.Register(fresh))

	hub.Unregister(old)
	assert.True(t, hub.IsBound("room1", "alice"))

	hub.Unregister(fresh)
	assert.False(t, hub.IsBound("room1", "alice"))
	assert.Zero(t, hub.ClientCount())
}

func TestHub_BroadcastStateExcludesSender(t *testing.T) {
	hub := NewHub(&mockLogger{})
	alice := NewClient("room1", "alice", 4)
	bob := NewClient("room1", "bob", 4)
	other := NewClient("room2", "carol", 4)
	for _, c := range []*Client{alice, bob, other} {
		require.NoError(t, hub.Register(c))
	}

	require.NoError(t, hub.BroadcastState("room1", map[string]string{"method": "join"}, ""))
	assert.Equal(t, []string{`{"method":"join"}`}, queued(alice))
	assert.Equal(t, []string{`{"method":"join"}`}, queued(bob))
	assert.Empty(t, queued(other))

	delivered := hub.RelayRaw("room1", []byte(`{"method":"drawing"}`), "alice")
	assert.Equal(t, 1, delivered)
	assert.Empty(t, queued(alice))
	assert.Equal(t, []string{`{"method":"drawing"}`}, queued(bob))
}

func TestHub_BroadcastStateMarshalError(t *testing.T) {
	hub := NewHub(&mockLogger{})
	err := hub.BroadcastState("room1", make(chan int), "")
	assert.Error(t, err)
}

func TestHub_SlowClientIsClosed(t *testing.T) {
	hub := NewHub(&mockLogger{})
	slow := NewClient("room1", "slow", 1)
	fast := NewClient("room1", "fast", 8)
	require.NoError(t, hub.Register(slow))
	require.NoError(t, hub.Register(fast))

	hub.RelayRaw("room1", []byte("1"), "")
	hub.RelayRaw("room1", []byte("2"), "")

	assert.True(t, isClosed(slow))
	assert.False(t, isClosed(fast))
	assert.Equal(t, []string{"1", "2"}, queued(fast))
	assert.Equal(t, []string{"1"}, queued(slow))
}

func TestHub_Send(t *testing.T) {
	hub := NewHub(&mockLogger{})
	alice := NewClient("room1", "alice", 2)
	require.NoError(t, hub.Register(alice))

	assert.True(t, hub.Send("room1", "alice", []byte("hi")))
	assert.False(t, hub.Send("room1", "bob", []byte("hi")))
	assert.Equal(t, []string{"hi"}, queued(alice))
}

func TestHub_DropRoom(t *testing.T) {
	hub := NewHub(&mockLogger{})
	alice := NewClient("room1", "alice", 1)
	bob := NewClient("room1", "bob", 1)
	require.NoError(t, hub.Register(alice))
	require.NoError(t, hub.Register(bob))

	assert.Equal(t, 2, hub.DropRoom("room1"))
	assert.True(t, isClosed(alice))
	assert.True(t, isClosed(bob))
	assert.Zero(t, hub.RoomClientCount("room1"))
	assert.Zero(t, hub.DropRoom("room1"))
}

func TestHub_RunClosesClientsOnShutdown(t *testing.T) {
	hub := NewHub(&mockLogger{})
	alice := NewClient("room1", "alice", 1)
	require.NoError(t, hub.Register(alice))

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	cancel()

	waited := make(chan struct{})
	go func() {
		hub.Wait()
		close(waited)
	}()

	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	assert.True(t, isClosed(alice))
	assert.Zero(t, hub.ClientCount())
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	c := NewClient("room1", "alice", 0)
	c.Close()
	c.Close()

	assert.True(t, isClosed(c))
	assert.False(t, c.Enqueue([]byte("late")))
}

func TestHub_ConcurrentRelay(t *testing.T) {
	hub := NewHub(&mockLogger{})
	clients := make([]*Client, 10)
	for i := range clients {
		clients[i] = NewClient("room1", string(rune('a'+i)), DefaultSendBuffer)
		require.NoError(t, hub.Register(clients[i]))
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				hub.RelayRaw("room1", []byte("x"), "")
			}
		}()
	}
	wg.Wait()

	for _, c := range clients {
		assert.Len(t, queued(c), 100)
		assert.False(t, isClosed(c))
	}
}

func TestBroadcastModule_Health(t *testing.T) {
	m := NewModule(&mockLogger{})
	require.NoError(t, m.GetHub().Register(NewClient("room1", "alice", 1)))

	status := m.Health(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, 1, status.Details["connected_clients"])

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Stop(context.Background()))
	assert.Zero(t, m.GetHub().ClientCount())
}
