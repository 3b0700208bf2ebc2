package realtime

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Connection wraps a websocket session on one thread and coordinates outbound
// writes via a buffered channel. Identity is optional: anonymous connections
// receive broadcasts but may not emit typing or message events.
type Connection struct {
	ID       string
	ThreadID string
	UserID   string // empty for anonymous
	UserName string

	ws     *websocket.Conn
	send   chan []byte
	once   sync.Once
	closed chan struct{}

	// alive is set by the pong handler and cleared by the liveness sweep
	// before each ping; a connection that missed the previous ping is dead.
	alive atomic.Bool
}

// NewConnection constructs a Connection for the given thread and identity.
func NewConnection(threadID, userID, userName string, ws *websocket.Conn) *Connection {
	c := &Connection{
		ID:       uuid.NewString(),
		ThreadID: threadID,
		UserID:   userID,
		UserName: userName,
		ws:       ws,
		send:     make(chan []byte, 128),
		closed:   make(chan struct{}),
	}
	c.alive.Store(true)
	return c
}

// Authenticated reports whether the connection carries a verified identity.
func (c *Connection) Authenticated() bool { return c.UserID != "" }

// Start launches the write loop. It must be called exactly once per connection.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Send enqueues payload for delivery. If the client is slow and the buffer is
// full, the connection is closed to keep backpressure bounded.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.closed:
		return errors.New("connection closed")
	default:
	}
	select {
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("connection buffer exceeded")
	}
}

// Close terminates the connection and stops the write loop.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		// send stays open: a concurrent Send may still select its case, and
		// sending on a closed channel would panic. The write loop exits via
		// the closed signal instead.
		close(c.closed)
		if c.ws != nil {
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
			_ = c.ws.Close()
		}
	})
}

// Closed is signaled when the connection has been terminated.
func (c *Connection) Closed() <-chan struct{} { return c.closed }

// MarkAlive records that the peer answered a ping. Wire it to the socket's
// pong handler.
func (c *Connection) MarkAlive() { c.alive.Store(true) }

// swapAlive clears the liveness flag and returns its previous value. A
// connection that was already false missed a full ping interval.
func (c *Connection) swapAlive() bool { return c.alive.Swap(false) }

// ping writes a control ping. WriteControl is safe concurrently with the
// write loop.
func (c *Connection) ping() error {
	if c.ws == nil {
		return nil
	}
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *Connection) writeLoop() {
	for {
		select {
		case <-c.closed:
			return
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.writeMessage(msg); err != nil {
				return
			}
		}
	}
}

func (c *Connection) writeMessage(payload []byte) error {
	if c.ws == nil {
		return nil
	}
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}
