// Package ws provides the WebSocket transport for the relay server.
// Text frames carry the same newline-delimited protocol as the TCP
// transport, so clients on either side share one chatroom.
package ws

import (
	"context"

	"github.com/gorilla/websocket"
)

// Conn adapts a gorilla websocket.Conn to relay.Conn.
type Conn struct {
	conn *websocket.Conn
}

// NewConn wraps a websocket.Conn.
func NewConn(conn *websocket.Conn) *Conn {
	return &Conn{conn: conn}
}

// Read implements relay.Conn.
// Each WebSocket message is handed to the framer as one chunk; a message
// may carry any number of protocol lines, or a fragment of one.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write implements relay.Conn.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close implements relay.Conn.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr implements relay.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
