package relay_test

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/tkymnr/ptt-relay/internal/relay"
)

// mockConn is an in-memory relay.Conn. Tests push inbound chunks with
// push and inspect outbound lines with lines; Close unblocks Read with
// io.EOF, like a peer hanging up.
type mockConn struct {
	remoteAddr string
	incoming   chan []byte
	closeCh    chan struct{}
	closeOnce  sync.Once

	mu      sync.Mutex
	written strings.Builder
}

func newMockConn() *mockConn {
	return &mockConn{
		remoteAddr: "127.0.0.1:1234",
		incoming:   make(chan []byte, 16),
		closeCh:    make(chan struct{}),
	}
}

func (m *mockConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case chunk := <-m.incoming:
		return chunk, nil
	case <-m.closeCh:
		return nil, io.EOF
	}
}

func (m *mockConn) Write(ctx context.Context, data []byte) error {
	select {
	case <-m.closeCh:
		return io.ErrClosedPipe
	default:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written.Write(data)
	return nil
}

func (m *mockConn) Close() error {
	m.closeOnce.Do(func() { close(m.closeCh) })
	return nil
}

func (m *mockConn) RemoteAddr() string {
	return m.remoteAddr
}

// push delivers one inbound protocol line to the connection.
func (m *mockConn) push(line string) {
	m.incoming <- []byte(line + "\n")
}

// lines returns every complete line written to the connection so far.
func (m *mockConn) lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := strings.Split(m.written.String(), "\n")
	if len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// received reports whether want has been written to the connection.
func (m *mockConn) received(want string) bool {
	for _, line := range m.lines() {
		if line == want {
			return true
		}
	}
	return false
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

// newTestClient wraps a fresh mockConn in a client with its write loop
// running, the way a transport would.
func newTestClient() (*relay.Client, *mockConn) {
	conn := newMockConn()
	client := relay.NewClient(conn)
	go client.WriteLoop()
	return client, conn
}
