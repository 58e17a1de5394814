package wsserver

import (
	"fmt"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/example/drawing-game-demo/modules/broadcast"
	"github.com/example/drawing-game-demo/modules/game"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
)

// Conn is the part of a WebSocket connection a session needs.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Joiner binds connections to rooms.
type Joiner interface {
	Join(client *broadcast.Client) (*game.Session, error)
}

// Handlers serves the live game channel.
type Handlers struct {
	rooms      Joiner
	sendBuffer int
	logger     types.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(rooms Joiner, logger types.Logger) *Handlers {
	return &Handlers{
		rooms:      rooms,
		sendBuffer: broadcast.DefaultSendBuffer,
		logger:     logger,
	}
}

// HandleWebSocket handles a connection to /ws/rooms/:id?username=.
func (h *Handlers) HandleWebSocket(c *websocket.Conn) {
	h.Serve(c, c.Params("id"), c.Query("username"))
}

// Serve joins the connection to the room and runs its session until the
// connection ends. A failed join gets an error frame and the connection is closed.
func (h *Handlers) Serve(conn Conn, roomID, username string) {
	client := broadcast.NewClient(roomID, username, h.sendBuffer)
	session, err := h.rooms.Join(client)
	if err != nil {
		h.logger.Info("Join rejected", "roomID", roomID, "username", username, "kind", game.KindOf(err), "error", err)
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.TextMessage, game.EncodeError(err))
		_ = conn.Close()
		return
	}

	h.logger.Info("WebSocket connected", "roomID", roomID, "username", username)

	var g errgroup.Group
	g.Go(func() error {
		return h.writePump(conn, client)
	})
	g.Go(func() error {
		return h.readPump(conn, session)
	})
	if err := g.Wait(); err != nil {
		h.logger.Debug("WebSocket session ended with error", "roomID", roomID, "username", username, "error", err)
	}

	h.logger.Info("WebSocket disconnected", "roomID", roomID, "username", username)
}

// readPump feeds inbound frames to the session. Whatever ends it, the
// player leaves the room exactly once.
func (h *Handlers) readPump(conn Conn, session *game.Session) (err error) {
	defer session.Leave()
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Recovered from session panic", "roomID", session.RoomID(), "username", session.Username(), "panic", r)
			err = fmt.Errorf("session panic: %v", r)
			session.SendError(err)
		}
	}()

	for {
		_, msg, readErr := conn.ReadMessage()
		if readErr != nil {
			if websocket.IsUnexpectedCloseError(readErr, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", "roomID", session.RoomID(), "username", session.Username(), "error", readErr)
			}
			return nil
		}

		done, handleErr := session.Handle(msg)
		if handleErr != nil {
			session.SendError(handleErr)
			return handleErr
		}
		if done {
			return nil
		}
	}
}

// writePump is the only writer of the socket. Once the client is closed the
// queued frames are flushed and the socket is closed, which ends readPump.
func (h *Handlers) writePump(conn Conn, client *broadcast.Client) error {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame := <-client.Send():
			if err := write(conn, websocket.TextMessage, frame); err != nil {
				client.Close()
				return fmt.Errorf("failed to write frame: %w", err)
			}
		case <-client.Done():
			return flush(conn, client)
		case <-ticker.C:
			if err := write(conn, websocket.PingMessage, nil); err != nil {
				client.Close()
				return fmt.Errorf("failed to write ping: %w", err)
			}
		}
	}
}

func flush(conn Conn, client *broadcast.Client) error {
	for {
		select {
		case frame := <-client.Send():
			if err := write(conn, websocket.TextMessage, frame); err != nil {
				return fmt.Errorf("failed to flush frame: %w", err)
			}
		default:
			return nil
		}
	}
}

func write(conn Conn, messageType int, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(messageType, data)
}
