// Package relay provides the core chat-relay domain logic shared by all
// transports: line framing, the roster registry, exclusive-talk arbitration,
// and the per-connection handler loop.
package relay

import "context"

// Conn abstracts a bidirectional connection for both TCP and WebSocket.
// This interface isolates transport details from relay logic.
type Conn interface {
	// Read reads the next chunk of raw bytes. Chunk boundaries carry no
	// meaning; the framer reassembles lines across them.
	// Returns io.EOF when the connection is closed.
	Read(ctx context.Context) ([]byte, error)

	// Write sends raw bytes. Callers pass complete newline-terminated
	// protocol lines.
	Write(ctx context.Context, data []byte) error

	// Close closes the connection. Safe to call more than once.
	Close() error

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}
