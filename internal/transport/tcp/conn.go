// Package tcp provides the TCP transport for the relay server.
package tcp

import (
	"context"
	"net"
	"time"
)

// readChunkSize bounds a single socket read. Protocol lines are short;
// voice frames are the only thing that comes close.
const readChunkSize = 4096

// Conn adapts net.Conn to relay.Conn. A deadline carried on the context
// is applied to the underlying socket for that one operation.
type Conn struct {
	conn net.Conn
}

// NewConn wraps a net.Conn.
func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn}
}

// Read implements relay.Conn.
// Returns whatever bytes are available on the socket, up to one chunk.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	if err := c.conn.SetReadDeadline(ctxDeadline(ctx)); err != nil {
		return nil, err
	}
	buf := make([]byte, readChunkSize)
	n, err := c.conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// Write implements relay.Conn.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	if err := c.conn.SetWriteDeadline(ctxDeadline(ctx)); err != nil {
		return err
	}
	_, err := c.conn.Write(data)
	return err
}

// Close implements relay.Conn.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr implements relay.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// ctxDeadline maps an undeadlined context to the zero time, which clears
// any deadline previously set on the socket.
func ctxDeadline(ctx context.Context) time.Time {
	if deadline, ok := ctx.Deadline(); ok {
		return deadline
	}
	return time.Time{}
}
