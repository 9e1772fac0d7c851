package relay

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

// outgoingBuffer bounds the per-client send queue. A client that falls this
// far behind a broadcast is treated as failed and evicted.
const outgoingBuffer = 64

// Client represents one connected client. The ID identifies the connection
// itself; it is distinct from the nickname, which is not unique.
type Client struct {
	ID       uuid.UUID
	Conn     Conn
	Nickname string

	outgoing chan []byte
	done     chan struct{}
	once     sync.Once
}

// NewClient wraps a transport connection in a fresh client record.
func NewClient(conn Conn) *Client {
	return &Client{
		ID:       uuid.New(),
		Conn:     conn,
		outgoing: make(chan []byte, outgoingBuffer),
		done:     make(chan struct{}),
	}
}

// WriteLoop drains the outgoing queue onto the connection. It returns when
// the client tears down or a write fails; a failed write closes the
// connection so the read side unblocks into its own teardown.
func (c *Client) WriteLoop() {
	for {
		select {
		case data := <-c.outgoing:
			if err := c.Conn.Write(context.Background(), data); err != nil {
				log.Printf("Failed to write to %s: %v", c.Conn.RemoteAddr(), err)
				c.Conn.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// enqueue offers one outbound payload without blocking. A full queue means
// the peer has stalled: the connection is closed, which funnels the client
// into the normal disconnect teardown.
func (c *Client) enqueue(data []byte) {
	select {
	case c.outgoing <- data:
	default:
		log.Printf("Client %s (%s) not keeping up, dropping connection", c.Nickname, c.Conn.RemoteAddr())
		c.Conn.Close()
	}
}

// finish releases the write loop. Idempotent.
func (c *Client) finish() {
	c.once.Do(func() { close(c.done) })
}
