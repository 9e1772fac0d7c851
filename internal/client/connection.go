package client

import (
	"context"
	"fmt"
	"net"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// ClientConnection represents a connection to the relay server.
type ClientConnection interface {
	// Write sends raw bytes to the server
	Write(data []byte) (int, error)

	// Read receives the next chunk of bytes from the server
	Read() ([]byte, error)

	// Close closes the connection
	Close() error

	// RemoteAddr returns the server address
	RemoteAddr() net.Addr
}

// TCPClientConnection wraps net.Conn for TCP connections
type TCPClientConnection struct {
	conn net.Conn
}

// DialTCP connects to the relay server over TCP.
func DialTCP(address string) (*TCPClientConnection, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	return &TCPClientConnection{conn: conn}, nil
}

func (tc *TCPClientConnection) Write(data []byte) (int, error) {
	return tc.conn.Write(data)
}

func (tc *TCPClientConnection) Read() ([]byte, error) {
	buf := make([]byte, 4096)
	n, err := tc.conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (tc *TCPClientConnection) Close() error {
	return tc.conn.Close()
}

func (tc *TCPClientConnection) RemoteAddr() net.Addr {
	return tc.conn.RemoteAddr()
}

// WebSocketClientConnection wraps net.Conn for WebSocket connections using
// gobwas/ws. Protocol lines travel inside text frames.
type WebSocketClientConnection struct {
	conn net.Conn
}

// DialWebSocket connects to the relay server over WebSocket.
// The address is a ws:// URL.
func DialWebSocket(address string) (*WebSocketClientConnection, error) {
	conn, _, _, err := ws.DefaultDialer.Dial(context.Background(), address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	return &WebSocketClientConnection{conn: conn}, nil
}

func (wc *WebSocketClientConnection) Write(data []byte) (int, error) {
	if err := wsutil.WriteClientText(wc.conn, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (wc *WebSocketClientConnection) Read() ([]byte, error) {
	data, err := wsutil.ReadServerText(wc.conn)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (wc *WebSocketClientConnection) Close() error {
	_ = wsutil.WriteClientMessage(wc.conn, ws.OpClose, nil)
	return wc.conn.Close()
}

func (wc *WebSocketClientConnection) RemoteAddr() net.Addr {
	return wc.conn.RemoteAddr()
}
