package tcp

import (
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/tkymnr/ptt-relay/internal/relay"
)

// Server accepts TCP connections and delegates each to the shared Room.
type Server struct {
	address  string
	listener net.Listener
	room     *relay.Room
	quit     chan struct{}
	wg       sync.WaitGroup

	mu    sync.Mutex
	conns map[*relay.Client]struct{}
}

// New creates a TCP server that feeds the provided Room.
func New(address string, room *relay.Room) *Server {
	return &Server{
		address: address,
		room:    room,
		quit:    make(chan struct{}),
		conns:   make(map[*relay.Client]struct{}),
	}
}

// Start listens and runs the accept loop. It blocks until Stop is called
// or the listener fails; a bind failure is returned before any client is
// accepted.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start TCP server: %w", err)
	}
	s.listener = listener

	log.Printf("TCP relay listening on %s", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return nil
			default:
				log.Printf("Failed to accept TCP connection: %v", err)
				continue
			}
		}

		client := relay.NewClient(NewConn(conn))
		s.track(client)

		s.wg.Add(2)
		go s.handleClient(client)
		go s.writeLoop(client)
	}
}

// Stop closes the listener, then every live connection, and waits for all
// handlers to drain through their own teardown.
func (s *Server) Stop() {
	close(s.quit)
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Lock()
	for client := range s.conns {
		client.Conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) track(client *relay.Client) {
	s.mu.Lock()
	s.conns[client] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) handleClient(client *relay.Client) {
	defer s.wg.Done()
	s.room.HandleClient(client)
	s.mu.Lock()
	delete(s.conns, client)
	s.mu.Unlock()
}

func (s *Server) writeLoop(client *relay.Client) {
	defer s.wg.Done()
	client.WriteLoop()
}
